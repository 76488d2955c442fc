package jvm

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"mcpanel/internal/logger"
	"mcpanel/internal/version"
)

func TestRequiredMajor(t *testing.T) {
	cases := map[string]int{
		"1.8.9":  8,
		"1.17.1": 8,
		"1.18.2": 17,
		"1.20.4": 17,
		"1.20.5": 21,
		"1.21":   21,
	}
	for in, want := range cases {
		v, _ := version.Parse(in)
		if got := RequiredMajor(v); got != want {
			t.Errorf("RequiredMajor(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestParseMajor(t *testing.T) {
	cases := []struct {
		out  string
		want int
		ok   bool
	}{
		{`java version "1.8.0_392"`, 8, true},
		{`openjdk version "17.0.9" 2023-10-17`, 17, true},
		{`openjdk version "21" 2023-09-19`, 21, true},
		{`command not found`, 0, false},
	}
	for _, c := range cases {
		got, ok := parseMajor(c.out)
		if ok != c.ok || got != c.want {
			t.Errorf("parseMajor(%q) = %d, %v; want %d, %v", c.out, got, ok, c.want, c.ok)
		}
	}
}

func TestPlatform(t *testing.T) {
	apiOS, arch, ext, err := platform("darwin", "arm64")
	if err != nil || apiOS != "mac" || arch != "aarch64" || ext != ".tar.gz" {
		t.Errorf("darwin/arm64 = %s %s %s %v", apiOS, arch, ext, err)
	}
	if _, _, ext, _ := platform("windows", "amd64"); ext != ".zip" {
		t.Errorf("windows should use zip, got %s", ext)
	}
	if _, _, _, err := platform("plan9", "amd64"); err == nil {
		t.Error("Expected error for unsupported OS")
	}
}

func TestFixedJavaPathIsReturnedAsIs(t *testing.T) {
	m := NewManager("/usr/lib/jvm/bin/java", t.TempDir(), nil, logger.Discard())
	got, err := m.JavaFor(context.Background(), 21)
	if err != nil || got != "/usr/lib/jvm/bin/java" {
		t.Errorf("JavaFor = %q, %v", got, err)
	}
}

type tarEntry struct {
	name, body string
	mode       int64
	link       string
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.link != "" {
			hdr = &tar.Header{Name: e.name, Mode: 0777, Linkname: e.link, Typeflag: tar.TypeSymlink}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		tw.Write([]byte(e.body))
	}
	tw.Close()
	gz.Close()
	return buf.Bytes()
}

func TestAutoInstallsRuntimeOnce(t *testing.T) {
	if runtime.GOOS == "windows" || (runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64") {
		t.Skip("runtime download test needs a unix amd64/arm64 host")
	}

	script := "#!/bin/sh\necho 'openjdk version \"17.0.9\" 2023-10-17' 1>&2\n"
	archive := buildTarGz(t, []tarEntry{
		{name: "jdk-17.0.9+9-jre/release", body: "JAVA_VERSION=17", mode: 0644},
		{name: "jdk-17.0.9+9-jre/bin/java", body: script, mode: 0755},
	})

	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if !strings.HasPrefix(r.URL.Path, "/17/ga/") {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	defer upstream.Close()

	runtimes := t.TempDir()
	m := NewManager(Auto, runtimes, upstream.Client(), logger.Discard())
	m.baseURL = upstream.URL + "/"

	path, err := m.JavaFor(context.Background(), 17)
	if err != nil {
		t.Fatalf("JavaFor: %v", err)
	}
	if !strings.HasPrefix(path, runtimes) || filepath.Base(path) != "java" {
		t.Errorf("Unexpected java path %s", path)
	}

	again, err := m.JavaFor(context.Background(), 17)
	if err != nil || again != path {
		t.Fatalf("Second JavaFor: %q, %v", again, err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("Expected a single download, got %d", n)
	}

	if _, err := m.JavaFor(context.Background(), 21); err == nil {
		t.Error("Expected an error when the upstream has no runtime")
	}
	if _, err := os.Stat(filepath.Join(runtimes, "java-21")); !os.IsNotExist(err) {
		t.Error("Failed installs should be cleaned up")
	}
}

func TestUntarRejectsTraversal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "evil.tar.gz")
	os.WriteFile(src, buildTarGz(t, []tarEntry{{name: "../escape.txt", body: "x", mode: 0644}}), 0644)

	dest := filepath.Join(t.TempDir(), "out")
	if err := untar(src, dest); err == nil {
		t.Fatal("Expected traversal entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt")); !os.IsNotExist(err) {
		t.Error("Entry escaped the destination directory")
	}
}

func TestUntarSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := t.TempDir()
	cases := []struct {
		name    string
		entries []tarEntry
	}{
		{"absolute target", []tarEntry{
			{name: "jre/link", link: outside},
			{name: "jre/link/evil.txt", body: "x", mode: 0644},
		}},
		{"relative escape", []tarEntry{
			{name: "jre/link", link: "../../outside"},
		}},
		{"write through link", []tarEntry{
			{name: "jre/self", link: "."},
			{name: "jre/self/up", link: ".."},
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "links.tar.gz")
			os.WriteFile(src, buildTarGz(t, c.entries), 0644)

			dest := filepath.Join(t.TempDir(), "out")
			if err := untar(src, dest); err == nil {
				t.Fatal("Expected symlink entry to be rejected")
			}
			if _, err := os.Stat(filepath.Join(outside, "evil.txt")); !os.IsNotExist(err) {
				t.Error("Entry was written outside the destination directory")
			}
		})
	}

	t.Run("file replaces link", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "replace.tar.gz")
		os.WriteFile(src, buildTarGz(t, []tarEntry{
			{name: "jre/self", link: "."},
			{name: "jre/c", link: "self/../../evil.txt"},
			{name: "jre/c", body: "x", mode: 0644},
		}), 0644)

		dest := filepath.Join(t.TempDir(), "out")
		untar(src, dest)
		if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt")); !os.IsNotExist(err) {
			t.Error("Entry was written through a symlink outside the destination directory")
		}
	})

	src := filepath.Join(t.TempDir(), "ok.tar.gz")
	os.WriteFile(src, buildTarGz(t, []tarEntry{
		{name: "jre/lib/libjvm.so", body: "so", mode: 0644},
		{name: "jre/bin/libjvm.so", link: "../lib/libjvm.so"},
	}), 0644)
	dest := filepath.Join(t.TempDir(), "out")
	if err := untar(src, dest); err != nil {
		t.Fatalf("Expected in-tree symlink to be accepted: %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(dest, "jre", "bin", "libjvm.so")); err != nil || string(data) != "so" {
		t.Errorf("Symlink did not resolve: %q, %v", data, err)
	}
}
