// Package backend launches the bundled api-server sidecar.
//
// The sidecar is started with the database URL in its environment and
// fixed host/port arguments. Its merged stdout/stderr is returned to the
// caller, who is expected to read it until EOF.
package backend
