// Package netutil converts between the textual and numeric forms of the
// backend's loopback address: port parsing, the URL handed to the webview,
// and a single TCP dial used as a readiness check.
package netutil
