// Package webui hands the backend URL to the page running in the webview.
//
// The page learns the URL three ways, all carrying the same string: the
// global window.__BACKEND_URL__, the localStorage key "backend_url" (which
// survives reloads), and a call to window.updateApiBaseURL when the page has
// defined it.
package webui
