// Package core provides the internal implementation of the shabtzak shell.
// It contains the Supervisor, which prepares the per-user data directory,
// seeds the database on first run, launches the api-server sidecar and pumps
// its output into the backend log and the GUI.
package core
