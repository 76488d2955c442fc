package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mcpanel/internal/app"
	"mcpanel/internal/domain"
)

type Options struct {
	Addr          string
	StaticPath    string
	RatePerMinute int
	RateBurst     int
}

// Server is the HTTP and websocket façade. Both sides start and stop together.
type Server struct {
	sessions SessionStore
	accounts AccountService
	servers  ServerManager
	hub      EventHub
	static   *StaticResolver
	limiter  *ipLimiter
	log      *slog.Logger

	httpServer *http.Server
}

func New(opts Options, sessions SessionStore, accounts AccountService, servers ServerManager, hub EventHub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "api")

	api := &Server{
		sessions: sessions,
		accounts: accounts,
		servers:  servers,
		hub:      hub,
		static:   NewStaticResolver(opts.StaticPath, log),
		limiter:  newIPLimiter(opts.RatePerMinute, opts.RateBurst),
		log:      log,
	}
	api.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api
}

func NewAPIServer(container *app.Container) *Server {
	cfg := container.Config
	return New(Options{
		Addr:          container.ListenAddr(),
		StaticPath:    cfg.StaticPath,
		RatePerMinute: cfg.RateLimit.PerMinute,
		RateBurst:     cfg.RateLimit.Burst,
	}, container.Auth, container.Auth, container.ServerManager, container.Hub, container.Logger)
}

func (api *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", redirectToDashboard)
	mux.HandleFunc("GET /app/{$}", redirectToDashboard)
	mux.HandleFunc("GET /app/{path...}", func(w http.ResponseWriter, r *http.Request) {
		api.static.Serve(w, r, r.PathValue("path"))
	})
	mux.HandleFunc("GET /{path...}", func(w http.ResponseWriter, r *http.Request) {
		api.static.Serve(w, r, r.PathValue("path"))
	})

	mux.HandleFunc("GET /ws", api.hub.ServeWs)

	mux.Handle("POST /api/login", api.rateLimited(api.handleLogin))
	mux.Handle("POST /api/register", api.rateLimited(api.handleRegister))
	mux.Handle("POST /api/logout", api.requireLevel(domain.AccessUser, api.handleLogout))
	mux.Handle("POST /api/delete_user", api.requireLevel(domain.AccessUser, api.handleDeleteUser))
	mux.Handle("GET /api/user", api.requireLevel(domain.AccessUser, api.handleGetUser))
	mux.Handle("POST /api/user/update_password", api.requireLevel(domain.AccessUser, api.handleUpdatePassword))
	mux.Handle("GET /api/user/{username}", api.requireLevel(domain.AccessOperator, api.handleGetUserByName))
	mux.Handle("POST /api/user/{username}/global_access", api.requireLevel(domain.AccessOperator, api.handleUpdateGlobalAccess))
	mux.Handle("POST /api/user/{username}/password", api.requireLevel(domain.AccessOperator, api.handleUpdateUserPassword))
	mux.Handle("GET /api/users", api.requireLevel(domain.AccessOperator, api.handleListUsers))

	mux.Handle("GET /api/mc_versions", api.requireLevel(domain.AccessUser, api.handleListMCVersions))
	mux.Handle("GET /api/forge_versions/{mc_version}", api.requireLevel(domain.AccessUser, api.handleListForgeVersions))
	mux.Handle("GET /api/servers", api.requireLevel(domain.AccessUser, api.handleListServers))
	mux.Handle("GET /api/server/{name}", api.requireLevel(domain.AccessUser, api.handleGetServer))
	mux.Handle("GET /api/server/{name}/stats", api.requireLevel(domain.AccessUser, api.handleServerStats))
	mux.Handle("GET /api/list_mc_server_dirs", api.requireLevel(domain.AccessUser, api.handleListServerDirs))
	mux.Handle("POST /api/create_server", api.requireLevel(domain.AccessOperator, api.handleCreateServer))
	mux.Handle("POST /api/delete_server/{name}", api.requireLevel(domain.AccessOperator, api.handleDeleteServer))
	mux.Handle("POST /api/rename_server/{name}", api.requireLevel(domain.AccessOperator, api.handleRenameServer))
	mux.Handle("POST /api/start_server/{name}", api.requireLevel(domain.AccessAdmin, api.handleStartServer))
	mux.Handle("POST /api/stop_server/{name}", api.requireLevel(domain.AccessAdmin, api.handleStopServer))
	mux.Handle("POST /api/restart_server/{name}", api.requireLevel(domain.AccessAdmin, api.handleRestartServer))

	return api.recoverMiddleware(api.corsMiddleware(api.pathMiddleware(mux)))
}

func redirectToDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/app/dashboard", http.StatusPermanentRedirect)
}

// Start runs the event hub and serves HTTP until Shutdown is called.
func (api *Server) Start() error {
	go api.hub.Run()

	api.log.Info("Starting HTTP server", "addr", api.httpServer.Addr)
	if err := api.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (api *Server) Shutdown(ctx context.Context) error {
	api.log.Info("Stopping HTTP server")
	err := api.httpServer.Shutdown(ctx)
	api.hub.Stop()
	api.log.Info("HTTP server stopped")
	return err
}
