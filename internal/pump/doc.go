// Package pump consumes the backend's merged stdout/stderr stream.
//
// Lines are handled strictly in the order the backend wrote them: each one
// is persisted, then checked for a port announcement. The current port lives
// in a local variable of Run; the only way it leaves the pump is through the
// OnPort callback, invoked from the pump goroutine.
package pump
