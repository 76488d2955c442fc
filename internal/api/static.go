package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidPath  = errors.New("invalid path")
	errFileNotFound = errors.New("file not found")
	errNoIndex      = errors.New("directory requested without index file")
)

var mimeTypes = map[string]string{
	"html":  "text/html",
	"css":   "text/css",
	"js":    "application/javascript",
	"json":  "application/json",
	"png":   "image/png",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
}

// StaticResolver maps request paths onto files of the bundled web client.
type StaticResolver struct {
	root string
	log  *slog.Logger
}

func NewStaticResolver(root string, log *slog.Logger) *StaticResolver {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &StaticResolver{root: filepath.Clean(root), log: log}
}

// Resolve returns the file to serve for rel, a slash separated path relative
// to the static root.
func (s *StaticResolver) Resolve(rel string) (string, error) {
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return "", errInvalidPath
	}
	for _, seg := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", errInvalidPath
		}
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", errInvalidPath
	}

	if _, err := os.Stat(full); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		full, err = s.fallback(full)
		if err != nil {
			return "", err
		}
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		index := filepath.Join(full, "index.html")
		if _, err := os.Stat(index); err != nil {
			if os.IsNotExist(err) {
				return "", errNoIndex
			}
			return "", err
		}
		full = index
	}
	return full, nil
}

// fallback tries "<path>.html", then "<dir>/<stem>/<file>" for scripts and styles.
func (s *StaticResolver) fallback(full string) (string, error) {
	if exists(full + ".html") {
		return full + ".html", nil
	}

	base := filepath.Base(full)
	if strings.HasSuffix(base, ".js") || strings.HasSuffix(base, ".css") || strings.HasSuffix(base, ".css.map") {
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		candidate := filepath.Join(filepath.Dir(full), stem, base)
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", errFileNotFound
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *StaticResolver) contentType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	s.log.Warn("Unknown file extension, defaulting to application/octet-stream", "ext", ext)
	return "application/octet-stream"
}

func (s *StaticResolver) Serve(w http.ResponseWriter, r *http.Request, rel string) {
	full, err := s.Resolve(rel)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidPath):
			s.log.Debug("Invalid path", "path", rel)
			http.Error(w, "Invalid path", http.StatusBadRequest)
		case errors.Is(err, errNoIndex):
			http.Error(w, "Directory requested without index file", http.StatusBadRequest)
		case errors.Is(err, errFileNotFound):
			s.log.Debug("File not found", "path", rel)
			http.Error(w, "File not found", http.StatusNotFound)
		default:
			s.log.Error("Error serving file", "path", rel, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	content, err := os.ReadFile(full)
	if err != nil {
		s.log.Error("Error serving file", "path", rel, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", s.contentType(full))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
