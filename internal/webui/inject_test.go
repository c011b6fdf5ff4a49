package webui

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestScript(t *testing.T) {
	t.Parallel()

	js := Script("http://localhost:8734")

	for _, want := range []string{
		"window.__BACKEND_URL__=u;",
		"localStorage.setItem('backend_url',u)",
		"typeof localStorage!=='undefined'",
		"if(window.updateApiBaseURL){window.updateApiBaseURL(u);}",
		`})("http://localhost:8734");`,
	} {
		if !strings.Contains(js, want) {
			t.Errorf("script missing %q:\n%s", want, js)
		}
	}

	// One literal feeds all three consumers.
	if n := strings.Count(js, "http://localhost:8734"); n != 1 {
		t.Errorf("url appears %d times, want 1", n)
	}
}

func TestScript_EscapesURL(t *testing.T) {
	t.Parallel()

	js := Script(`http://localhost:1/'";</script>`)
	if strings.Contains(js, `'";</script>`) {
		t.Errorf("url not escaped: %s", js)
	}
}

func TestInjector_Publish(t *testing.T) {
	t.Parallel()

	var got []string
	inj := NewInjector(EvaluatorFunc(func(js string) { got = append(got, js) }), nil)

	inj.Publish("http://localhost:8001")
	inj.Publish("http://localhost:8002")

	if len(got) != 2 {
		t.Fatalf("Eval called %d times, want 2", len(got))
	}
	if got[1] != Script("http://localhost:8002") {
		t.Errorf("second script = %q", got[1])
	}
	if inj.Last() != "http://localhost:8002" {
		t.Errorf("Last() = %q", inj.Last())
	}
}

func TestInjector_NoWindow(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	inj := NewInjector(nil, slog.New(slog.NewTextHandler(&logs, nil)))

	inj.Publish("http://localhost:8000")

	if inj.Last() != "http://localhost:8000" {
		t.Errorf("Last() = %q", inj.Last())
	}
	if !strings.Contains(logs.String(), "url=http://localhost:8000") {
		t.Errorf("expected url in logs, got %q", logs.String())
	}
}
