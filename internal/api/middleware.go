package api

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"mcpanel/internal/domain"

	"golang.org/x/time/rate"
)

// AuthContext is handed to every protected handler once the gate has passed.
type AuthContext struct {
	Token string
	User  *domain.User
}

type AuthHandler func(w http.ResponseWriter, r *http.Request, auth AuthContext)

// requireLevel runs the auth gate before next: header, token, expiry, user, level.
func (api *Server) requireLevel(level domain.AccessLevel, next AuthHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.log.Info("Request", "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path)

		auth, status, msg := api.authenticate(r, level)
		if status != 0 {
			writeMessage(w, status, msg)
			return
		}

		api.log.Debug("Access granted", "username", auth.User.Username, "required", level)
		next(w, r, auth)
	})
}

func (api *Server) authenticate(r *http.Request, level domain.AccessLevel) (auth AuthContext, status int, msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			api.log.Error("Panic while checking credentials", "panic", rec, "stack", string(debug.Stack()))
			status, msg = http.StatusInternalServerError, "Internal Server Error"
		}
	}()

	header := r.Header.Get("Authorization")
	if header == "" {
		api.log.Info("Missing Authorization header")
		return auth, http.StatusBadRequest, "Missing parameters"
	}
	if !strings.HasPrefix(header, "Bearer ") {
		api.log.Info("Invalid Authorization header format")
		return auth, http.StatusUnauthorized, "Invalid token"
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return auth, http.StatusUnauthorized, "Invalid token"
	}

	stored, err := api.sessions.LookupToken(token)
	if err != nil {
		api.log.Error("Error looking up token", "error", err)
		return auth, http.StatusInternalServerError, "Internal Server Error"
	}
	if stored == nil || !stored.IsValid(time.Now()) {
		api.log.Info("Invalid token")
		return auth, http.StatusUnauthorized, "Invalid token"
	}

	user, err := api.sessions.LookupUser(stored.Username)
	if err != nil {
		api.log.Error("Error looking up user", "error", err)
		return auth, http.StatusInternalServerError, "Internal Server Error"
	}
	if user == nil {
		api.log.Info("Token owner no longer exists", "username", stored.Username)
		return auth, http.StatusUnauthorized, "Invalid token"
	}
	if !user.AccessLevel.Allows(level) {
		api.log.Info("Insufficient access level", "username", user.Username, "level", user.AccessLevel, "required", level)
		return auth, http.StatusForbidden, "Forbidden"
	}

	return AuthContext{Token: token, User: user}, 0, ""
}

func (api *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				api.log.Error("Panic while handling request", "path", r.URL.Path, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
				writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// pathMiddleware answers 400 for paths with ".." segments or empty segments
// before ServeMux cleans them into a redirect.
func (api *Server) pathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uncleanPath(r.URL.Path) {
			api.log.Debug("Invalid path", "path", r.URL.Path)
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func uncleanPath(p string) bool {
	if strings.Contains(p, "//") {
		return true
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func (api *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter throttles unauthenticated endpoints per client address.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.visitors) > 1024 {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > 10*time.Minute {
				delete(l.visitors, k)
			}
		}
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (api *Server) rateLimited(next http.HandlerFunc) http.Handler {
	if api.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !api.limiter.allow(ip) {
			api.log.Warn("Rate limit exceeded", "remote", ip, "path", r.URL.Path)
			writeMessage(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next(w, r)
	})
}
