// Package shell is the native side of the Shabtzak desktop application.
//
// A Supervisor prepares the per-user data directory, seeds the SQLite
// database from the bundled template on first run, launches the bundled
// api-server sidecar and relays the port it announces to the GUI.
//
// # Basic Usage
//
//	sup := shell.New(
//	    shell.WithIdentifier("com.shabtzak.app"),
//	    shell.WithEvaluator(window),
//	)
//	if err := sup.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sup.Shutdown()
//
//	if err := sup.WaitReady(ctx, shell.DefaultReadyTimeout); err != nil {
//	    log.Print(err)
//	}
//	fmt.Println(sup.URL()) // http://localhost:8000 or the announced port
//
// # Backend Output
//
// Every line the sidecar prints, on stdout or stderr, is echoed to the
// shell's stderr as "[api] <line>" and appended, without ANSI escapes, to
// backend.log in the data directory. A line containing
// "Uvicorn running on http://127.0.0.1:<port>", or a JSON object
// {"event":"listening","port":<port>}, announces the port. Every
// announcement is pushed to the window; the last one wins.
//
// # GUI Contract
//
// On each announcement the window receives a script that sets
// window.__BACKEND_URL__, stores localStorage "backend_url" and calls
// window.updateApiBaseURL(url) when the page defines it. Pages that load
// after the announcement should read window.__BACKEND_URL__ or the stored
// value.
//
// # Lifetime
//
// The sidecar runs until Shutdown, which sends SIGTERM and escalates to
// SIGKILL after a grace period. On Linux the sidecar also receives SIGTERM
// if the shell dies. There is no restart: when the sidecar exits on its
// own, Done is closed and Wait returns its exit error.
package shell
