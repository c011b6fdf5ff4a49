package webui

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// GlobalName is the window property holding the backend URL.
const GlobalName = "__BACKEND_URL__"

// StorageKey is the localStorage key holding the backend URL.
const StorageKey = "backend_url"

// CallbackName is the optional page function notified of a new URL.
const CallbackName = "updateApiBaseURL"

// Evaluator runs JavaScript in the main window. Implementations are
// responsible for hopping onto the GUI thread if the toolkit requires it.
type Evaluator interface {
	Eval(js string)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(js string)

// Eval calls f(js).
func (f EvaluatorFunc) Eval(js string) { f(js) }

// Script returns the JavaScript that publishes url to the page. The URL is
// embedded as a JSON string literal, which is also a valid JS literal.
func Script(url string) string {
	lit, err := json.Marshal(url)
	if err != nil {
		// Marshal of a string cannot fail.
		panic(fmt.Sprintf("webui: encode url: %v", err))
	}
	return fmt.Sprintf(
		"(function(u){window.%s=u;"+
			"if(typeof localStorage!=='undefined'){localStorage.setItem('%s',u);}"+
			"if(window.%s){window.%s(u);}})(%s);",
		GlobalName, StorageKey, CallbackName, CallbackName, lit)
}

// Injector publishes backend URLs to a window. It is used from the output
// pump only.
type Injector struct {
	target Evaluator
	log    *slog.Logger
	last   string
}

// NewInjector returns an Injector for target. A nil target is allowed
// (headless runs); Publish then only records and logs the URL.
func NewInjector(target Evaluator, logger *slog.Logger) *Injector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{target: target, log: logger}
}

// Publish pushes url to the window.
func (i *Injector) Publish(url string) {
	i.last = url
	if i.target == nil {
		i.log.Info("backend url available (no window attached)", "url", url)
		return
	}
	i.log.Debug("injecting backend url", "url", url)
	i.target.Eval(Script(url))
}

// Last returns the most recently published URL, or "" if none.
func (i *Injector) Last() string {
	return i.last
}
