package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcpanel/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newStaticFixture(t *testing.T) (root, secret string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "client")
	secret = filepath.Join(base, "secret.txt")

	writeFile(t, filepath.Join(root, "index.html"), "<h1>root</h1>")
	writeFile(t, filepath.Join(root, "dashboard.html"), "<h1>dashboard</h1>")
	writeFile(t, filepath.Join(root, "assets", "app", "app.js"), "console.log(1)")
	writeFile(t, filepath.Join(root, "style.css"), "body{}")
	writeFile(t, filepath.Join(root, "theme.css", "theme.css.map"), `{"version":3}`)
	writeFile(t, filepath.Join(root, "font.woff2"), "font")
	writeFile(t, filepath.Join(root, "data.bin"), "raw")
	writeFile(t, filepath.Join(root, "settings", "index.html"), "<h1>settings</h1>")
	writeFile(t, filepath.Join(root, "empty", "readme.txt"), "nothing")
	writeFile(t, secret, "do not leak")
	return root, secret
}

func serveStatic(s *StaticResolver, rel string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil), rel)
	return rec
}

func TestStaticTraversalIsRejected(t *testing.T) {
	root, secret := newStaticFixture(t)
	s := NewStaticResolver(root, logger.Discard())

	for _, rel := range []string{"../secret.txt", "assets/../../secret.txt", "/etc/passwd", secret, `..\secret.txt`} {
		rec := serveStatic(s, rel)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", rel, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "do not leak") {
			t.Errorf("%q: secret content leaked", rel)
		}
	}
}

func TestStaticResolution(t *testing.T) {
	root, _ := newStaticFixture(t)
	s := NewStaticResolver(root, logger.Discard())

	cases := []struct {
		rel, body, contentType string
	}{
		{"", "<h1>root</h1>", "text/html"},
		{"dashboard", "<h1>dashboard</h1>", "text/html"},
		{"assets/app.js", "console.log(1)", "application/javascript"},
		{"style.css", "body{}", "text/css"},
		{"theme.css.map", `{"version":3}`, "application/octet-stream"},
		{"font.woff2", "font", "font/woff2"},
		{"data.bin", "raw", "application/octet-stream"},
		{"settings", "<h1>settings</h1>", "text/html"},
	}
	for _, c := range cases {
		rec := serveStatic(s, c.rel)
		if rec.Code != http.StatusOK {
			t.Errorf("%q: expected 200, got %d", c.rel, rec.Code)
			continue
		}
		if rec.Body.String() != c.body {
			t.Errorf("%q: unexpected body %q", c.rel, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != c.contentType {
			t.Errorf("%q: expected %s, got %s", c.rel, c.contentType, ct)
		}
	}
}

func TestStaticErrors(t *testing.T) {
	root, _ := newStaticFixture(t)
	s := NewStaticResolver(root, logger.Discard())

	if rec := serveStatic(s, "missing.png"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing file, got %d", rec.Code)
	}
	if rec := serveStatic(s, "empty"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for directory without index, got %d", rec.Code)
	}
}

func TestStaticThroughRouter(t *testing.T) {
	root, _ := newStaticFixture(t)
	env := newTestEnv(t, Options{StaticPath: root})

	rec := env.do(http.MethodGet, "/app/dashboard", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>dashboard</h1>" {
		t.Errorf("Expected dashboard page, got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/style.css", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/css" {
		t.Errorf("Expected stylesheet, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestRouterRejectsUncleanPaths(t *testing.T) {
	root, _ := newStaticFixture(t)
	env := newTestEnv(t, Options{StaticPath: root})

	for _, path := range []string{"/app/../secret.txt", "/../secret.txt", "//etc/passwd", "/app//etc/passwd", "/app/%2e%2e/secret.txt"} {
		rec := env.do(http.MethodGet, path, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "do not leak") {
			t.Errorf("%s: secret content leaked", path)
		}
	}
}
