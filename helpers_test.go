package mdblog

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// newContentServer serves files keyed by decoded URL path; anything else is
// a 404. Requests are counted per path.
func newContentServer(t *testing.T, files map[string]string) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{counts: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

type requestLog struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *requestLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[path]++
}

func (l *requestLog) count(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[path]
}

// fakeEngine renders any source to an SVG that smuggles a script and an
// event handler. Sources containing "invalid" are rejected.
type fakeEngine struct {
	mu     sync.Mutex
	inits  int
	ids    []string
	closed bool
}

func (e *fakeEngine) Initialize(DiagramConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inits++
	return nil
}

func (e *fakeEngine) Render(_ context.Context, id, source string) (string, error) {
	e.mu.Lock()
	e.ids = append(e.ids, id)
	e.mu.Unlock()

	if strings.Contains(source, "invalid") {
		return "", errors.New("Parse error on line 1")
	}
	return `<svg id="` + id + `" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
		`<script>alert(1)</script>` +
		`<g onclick="alert(2)"><text x="1" y="1">` + html.EscapeString(source) + `</text></g></svg>`, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// statusRecorder records OnStatus calls.
type statusRecorder struct {
	mu   sync.Mutex
	seen []Status
}

func (s *statusRecorder) record(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, st)
}

func (s *statusRecorder) statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Status(nil), s.seen...)
}

const helloPost = "---\ntitle: Hello\npath: [a]\n---\n![[img/x.png|X]]\n# Title\n"
