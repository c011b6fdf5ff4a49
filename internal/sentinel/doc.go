// Package sentinel defines the const-declarable error type used for every
// sentinel error in the shell (missing sidecar, double start, and so on).
package sentinel
