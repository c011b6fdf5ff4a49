// Package fileutil holds the small filesystem helpers the shell needs to
// prepare its per-user data directory: recursive directory creation, an
// existence check, and a file copy that can refuse to clobber an existing
// destination. The seed database copy is built on CopyFile with NoClobber.
package fileutil
