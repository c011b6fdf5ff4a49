// Package announce recognizes the line in the backend's output that tells
// the shell which port it actually bound.
//
// Two forms are understood. The structured form is a single JSON object on
// its own line:
//
//	{"event":"listening","port":8734}
//
// The text form is uvicorn's startup banner, kept for backends that do not
// emit the structured line:
//
//	INFO:     Uvicorn running on http://127.0.0.1:8734 (Press CTRL+C to quit)
//
// Both are best effort. Nothing acknowledges the announcement and a backend
// that never prints one leaves the shell on the requested port.
package announce
