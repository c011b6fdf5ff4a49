package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/shabtzak/shell/internal/announce"
	"github.com/shabtzak/shell/internal/backend"
	"github.com/shabtzak/shell/internal/datadir"
	"github.com/shabtzak/shell/internal/fileutil"
	"github.com/shabtzak/shell/internal/logsink"
	"github.com/shabtzak/shell/internal/netutil"
	"github.com/shabtzak/shell/internal/process"
	"github.com/shabtzak/shell/internal/pump"
	"github.com/shabtzak/shell/internal/webui"
)

type supervisorState int

const (
	stateCreated supervisorState = iota
	stateRunning
	stateStopped
)

// Supervisor boots and owns one api-server sidecar.
//
// Lifecycle: NewSupervisor → Start → (Port/WaitAnnounced/WaitReady) →
// Shutdown. Start runs at most once; Shutdown is idempotent and safe before
// Start. All methods are safe for concurrent use.
type Supervisor struct {
	cfg Config

	// mu serializes Start and Shutdown and guards the fields below it.
	mu       sync.Mutex
	state    supervisorState
	dataDir  string
	dbPath   string
	logPath  string
	lock     *flock.Flock
	backend  *backend.Process
	group    *errgroup.Group
	injector *webui.Injector

	// Set by Start before any goroutine runs, read-only afterwards.
	childExited  <-chan struct{}
	childExitErr func() error

	// port is the published copy of the pump's current port. Only the pump
	// goroutine stores to it.
	port         atomic.Uint32
	announced    chan struct{}
	announceOnce sync.Once
	streamDone   chan struct{}
	stopping     atomic.Bool
}

// NewSupervisor returns an unstarted Supervisor. It performs no I/O.
// It panics if cfg is invalid, since that is a programming error.
func NewSupervisor(cfg Config) *Supervisor {
	if err := cfg.Validate(); err != nil {
		panic("shabtzak: invalid supervisor config: " + err.Error())
	}
	s := &Supervisor{
		cfg:        cfg,
		announced:  make(chan struct{}),
		streamDone: make(chan struct{}),
	}
	s.port.Store(uint32(cfg.Port))
	return s
}

// Start prepares the data directory, seeds the database, launches the
// sidecar and starts pumping its output. It returns once the pump runs.
//
// Only a missing or unspawnable sidecar, or another shell owning the data
// directory, fails Start. Directory, seed and log-file problems are logged
// and startup continues.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return fmt.Errorf("%w: supervisor was shut down", ErrAlreadyStarted)
	}

	log := Logger()

	dataDir := s.resolveDataDir()
	fl, err := acquireDataDirLock(ctx, dataDir, s.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) || ctx.Err() != nil {
			return fmt.Errorf("start: %w", err)
		}
		log.Warn("data directory lock unavailable; continuing unlocked", "error", err)
	}

	dbPath := filepath.Join(dataDir, s.cfg.DBFileName)
	if _, err := SeedDatabase(ctx, dbPath, s.cfg.SeedDBPath, log); err != nil {
		log.Warn("failed to copy initial database", "error", err)
	}

	logPath := filepath.Join(dataDir, s.cfg.LogFileName)
	log.Info("app data directory", "path", dataDir)
	log.Info("database", "path", dbPath)
	log.Info("log file", "path", logPath)

	stream, proc, err := s.spawn(ctx, dataDir, dbPath)
	if err != nil {
		releaseDataDirLock(log, fl)
		return err
	}

	echo := s.cfg.Echo
	if echo == nil {
		echo = os.Stderr
	}
	sink := logsink.Open(logPath, echo, log)
	injector := webui.NewInjector(s.cfg.Evaluator, log)

	s.dataDir = dataDir
	s.dbPath = dbPath
	s.logPath = logPath
	s.lock = fl
	s.backend = proc
	s.injector = injector
	s.childExited = proc.Exited()
	s.childExitErr = proc.ExitErr
	s.state = stateRunning

	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(s.streamDone)
		defer func() {
			if err := sink.Close(); err != nil {
				log.Warn("close backend log", "path", logPath, "error", err)
			}
		}()
		defer func() { _ = stream.Close() }()

		port, err := pump.Run(stream, pump.Config{
			Sink:        sink,
			InitialPort: s.cfg.Port,
			OnPort:      func(m announce.Match) { s.publish(injector, m) },
			Logger:      log,
		})
		log.Debug("backend output closed", "port", port)
		return err
	})
	g.Go(func() error {
		<-s.childExited
		if s.stopping.Load() {
			log.Debug("backend exited after shutdown request")
			return nil
		}
		if err := s.childExitErr(); err != nil {
			log.Warn("backend exited", "error", err)
		} else {
			log.Info("backend exited")
		}
		return nil
	})
	s.group = g
	return nil
}

// resolveDataDir returns the absolute configured or per-user data
// directory, falling back to the temp directory. It never fails.
func (s *Supervisor) resolveDataDir() string {
	dir := s.chooseDataDir()
	abs, err := filepath.Abs(dir)
	if err != nil {
		Logger().Warn("cannot make data directory absolute", "path", dir, "error", err)
		return dir
	}
	return abs
}

func (s *Supervisor) chooseDataDir() string {
	log := Logger()
	if s.cfg.DataDir != "" {
		err := fileutil.EnsureDir(s.cfg.DataDir)
		if err == nil {
			return s.cfg.DataDir
		}
		dir, fbErr := datadir.Fallback()
		log.Warn("configured data directory unusable; using temp directory",
			"configured", s.cfg.DataDir, "path", dir, "error", errors.Join(err, fbErr))
		return dir
	}
	dir, fellBack, cause := datadir.Resolve(s.cfg.Identifier)
	if fellBack {
		log.Warn("per-user data directory unavailable; using temp directory",
			"path", dir, "error", cause)
	}
	return dir
}

func (s *Supervisor) spawn(ctx context.Context, dataDir, dbPath string) (io.ReadCloser, *backend.Process, error) {
	binary, err := backend.ResolveBinary(s.cfg.SidecarBinary)
	if err != nil {
		return nil, nil, fmt.Errorf("start backend: %w", err)
	}
	proc, err := backend.New(backend.Config{
		Binary:      binary,
		DatabaseURL: DatabaseURL(dbPath),
		DatabaseEnv: s.cfg.DatabaseEnv,
		Host:        s.cfg.Host,
		Port:        s.cfg.Port,
		Dir:         dataDir,
		StopTimeout: s.cfg.StopTimeout,
		Logger:      Logger(),
	})
	if err != nil {
		return nil, nil, err
	}
	stream, err := proc.Start(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("start backend: %w", err)
	}
	return stream, proc, nil
}

// publish runs on the pump goroutine for every announcement.
func (s *Supervisor) publish(injector *webui.Injector, m announce.Match) {
	s.port.Store(uint32(m.Port))
	injector.Publish(netutil.LocalURL(m.Port))
	s.announceOnce.Do(func() { close(s.announced) })
}

// Port returns the most recently announced port, or the configured port
// before any announcement.
func (s *Supervisor) Port() uint16 {
	return uint16(s.port.Load())
}

// URL returns http://localhost:<Port>.
func (s *Supervisor) URL() string {
	return netutil.LocalURL(s.Port())
}

// DataDir returns the data directory chosen by Start, or "" before Start.
func (s *Supervisor) DataDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataDir
}

// DBPath returns the database path chosen by Start, or "" before Start.
func (s *Supervisor) DBPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbPath
}

// LogPath returns the backend log path chosen by Start, or "" before Start.
func (s *Supervisor) LogPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logPath
}

func (s *Supervisor) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != stateCreated
}

// WaitAnnounced blocks until the sidecar announces a port, its output ends,
// or ctx is done. It returns the announced port.
func (s *Supervisor) WaitAnnounced(ctx context.Context) (uint16, error) {
	if !s.started() {
		return 0, ErrNotStarted
	}
	select {
	case <-s.announced:
		return s.Port(), nil
	case <-s.streamDone:
		// The final line may have announced; the pump closes announced first.
		select {
		case <-s.announced:
			return s.Port(), nil
		default:
			return 0, ErrStreamClosed
		}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WaitReady waits for the announcement and then for the announced port to
// accept TCP connections, all within timeout. It fails early if the sidecar
// exits.
func (s *Supervisor) WaitReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("wait ready: %w", process.ErrTimeoutNotPositive)
	}
	s.mu.Lock()
	proc := s.backend
	s.mu.Unlock()
	if proc == nil {
		return ErrNotStarted
	}

	deadline := time.Now().Add(timeout)
	announceCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	port, err := s.WaitAnnounced(announceCtx)
	if err != nil {
		return fmt.Errorf("wait for announcement: %w", err)
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return fmt.Errorf("wait ready: %w", context.DeadlineExceeded)
	}
	return proc.WaitReady(ctx, netutil.HostPort(s.cfg.Host, port), remaining)
}

// Wait blocks until the sidecar's output has ended and the sidecar has been
// reaped. It returns nil after Shutdown, and otherwise the sidecar's exit
// error joined with any output read error.
func (s *Supervisor) Wait() error {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g == nil {
		return ErrNotStarted
	}
	pumpErr := g.Wait()
	if s.stopping.Load() {
		return pumpErr
	}
	return errors.Join(pumpErr, s.childExitErr())
}

// Done returns a channel closed when the sidecar's output has ended, which
// happens when it exits. It is nil before Start.
func (s *Supervisor) Done() <-chan struct{} {
	if !s.started() {
		return nil
	}
	return s.streamDone
}

// Shutdown stops the sidecar (SIGTERM, then SIGKILL after a grace period),
// waits for its output to drain, and releases the log file and the data
// directory lock. It is idempotent.
func (s *Supervisor) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateCreated:
		s.state = stateStopped
		return nil
	case stateStopped:
		return nil
	}
	s.state = stateStopped
	s.stopping.Store(true)

	log := Logger()
	timeout := s.cfg.StopTimeout

	stopErr := s.backend.Stop(timeout)
	if !waitClosed(s.streamDone, timeout) {
		// A grandchild still holds the pipe; closing our end ends the pump.
		log.Warn("backend output still open after stop; closing pipe")
	}
	_ = process.Release(&s.backend, timeout, "api-server", log)
	if !waitClosed(s.streamDone, timeout) {
		log.Warn("backend output pump did not finish")
	}

	releaseDataDirLock(log, s.lock)
	s.lock = nil
	log.Info("shutdown complete")
	return stopErr
}

func waitClosed(ch <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}
