// Package logsink persists the backend's output to backend.log in the data
// directory. Every line is echoed raw to the shell's own stderr and written
// to the file with color escapes removed and an "[api] " prefix. The file is
// flushed after each line so a crash loses at most the line being written.
//
// If the file cannot be opened the sink keeps working in echo-only mode.
package logsink
