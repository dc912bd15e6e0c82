package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/rushhour/api"
	"github.com/wricardo/mcp-training/rushhour/game/config"
	"github.com/wricardo/mcp-training/rushhour/game/service"
	"github.com/wricardo/mcp-training/rushhour/game/session"
	"github.com/wricardo/mcp-training/rushhour/internal/logging"
	"github.com/wricardo/mcp-training/rushhour/transport/mcp"
	"github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

const (
	solutionMaxAge  = 24 * time.Hour
	cleanupInterval = time.Hour
)

func serveCommand(stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory searched for rushhour.json or rushhour.yaml",
				Value:   ".",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "store", Usage: "solution store driver (file, sqlite, postgres)"},
			&cli.StringFlag{Name: "store-dsn", Usage: "sqlite path or postgres DSN"},
			&cli.StringFlag{Name: "store-dir", Usage: "directory for the file store"},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cli.Exit(err.Error(), exitBadInput)
			}
			logger, err := logging.Setup(settings.LogLevel, stderr)
			if err != nil {
				return cli.Exit(err.Error(), exitBadInput)
			}
			return runHTTPServer(ctx, cmd, settings, logger)
		},
	}
}

func mcpCommand(stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "REST API to proxy; an internal server starts when it is unreachable",
				Value: "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory searched for rushhour.json or rushhour.yaml",
				Value:   ".",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return cli.Exit(err.Error(), exitBadInput)
			}
			logger, err := logging.Setup(settings.LogLevel, stderr)
			if err != nil {
				return cli.Exit(err.Error(), exitBadInput)
			}
			return runStdioMCP(ctx, cmd.String("api-url"), settings, logger)
		},
	}
}

// loadSettings reads viper settings and applies explicitly set flags on top
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("puzzles-dir") {
		settings.PuzzlesDir = cmd.String("puzzles-dir")
	}
	if cmd.IsSet("log-level") {
		settings.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("max-states") {
		settings.MaxStates = int(cmd.Int("max-states"))
	}
	if cmd.IsSet("store") {
		settings.Store.Driver = cmd.String("store")
	}
	if cmd.IsSet("store-dsn") {
		settings.Store.DSN = cmd.String("store-dsn")
	}
	if cmd.IsSet("store-dir") {
		settings.Store.Dir = cmd.String("store-dir")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// openPersistence selects the solution store backend. The returned close
// function is never nil.
func openPersistence(store config.StoreSettings) (session.Persistence, func() error, error) {
	noop := func() error { return nil }

	switch store.Driver {
	case config.StoreSQLite:
		sp, err := session.OpenSQLite(store.DSN)
		if err != nil {
			return nil, noop, err
		}
		return sp, sp.Close, nil
	case config.StorePostgres:
		sp, err := session.OpenPostgres(store.DSN)
		if err != nil {
			return nil, noop, err
		}
		return sp, sp.Close, nil
	default:
		fp, err := session.NewFilePersistence(store.Dir)
		if err != nil {
			return nil, noop, err
		}
		return fp, noop, nil
	}
}

// initializeServices wires the catalog, the solution store and the solver
// service. It also starts a background routine that evicts stale records
// from memory until ctx is done.
func initializeServices(ctx context.Context, settings *config.Settings, notifier service.ProgressNotifier, logger zerolog.Logger) (service.SolverService, func() error, error) {
	catalog, err := config.NewManager(settings.PuzzlesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create puzzle catalog: %w", err)
	}

	persistence, closeStore, err := openPersistence(settings.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open solution store: %w", err)
	}

	manager := session.NewManagerWithPersistence(persistence, logger)
	if err := manager.LoadPersisted(); err != nil {
		logger.Warn().Err(err).Msg("failed to load persisted solutions")
	}

	solver := service.NewSolverService(manager, catalog, service.Options{
		MaxStates:     settings.MaxStates,
		ProgressEvery: settings.ProgressEvery,
		Notifier:      notifier,
		Logger:        logger,
	})

	go cleanupRoutine(ctx, manager, logger)

	logger.Info().
		Str("puzzles", settings.PuzzlesDir).
		Str("store", settings.Store.Driver).
		Int("solutions", manager.Count()).
		Msg("services initialized")

	return solver, closeStore, nil
}

// cleanupRoutine periodically evicts records that have not been accessed
// within solutionMaxAge. Persisted copies stay on disk.
func cleanupRoutine(ctx context.Context, manager *session.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpired(solutionMaxAge); removed > 0 {
				logger.Info().Int("count", removed).Msg("evicted idle solutions from memory")
			}
		}
	}
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, mcpServer *server.MCPServer) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp until ctx is
// cancelled. With --ngrok it also serves through a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command, settings *config.Settings, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	solver, closeStore, err := initializeServices(ctx, settings, hub, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("failed to close solution store")
		}
	}()

	addr := settings.Addr()
	apiServer := api.NewServer(solver, hub, logger)
	mcpClient := mcp.NewClient("http://" + addr)
	mainRouter := newRouter(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		logger.Info().Msgf("REST API: http://%s/api", addr)
		logger.Info().Msgf("WebSocket: ws://%s/ws?solution=<id>", addr)
		logger.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter, logger)
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	logger.Info().Msg("server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler, logger zerolog.Logger) {
	if authToken == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logger.Info().Str("url", ngrokURL).Msg("ngrok tunnel established")
	logger.Info().Msgf("REST API (ngrok): %s/api", ngrokURL)
	logger.Info().Msgf("MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error().Err(err).Msg("ngrok server error")
	}
	logger.Info().Msg("ngrok tunnel closed")
}

// apiReachable reports whether a REST API answers /health at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and
// returns its base URL
func startInternalAPI(ctx context.Context, settings *config.Settings, logger zerolog.Logger) (string, func() error, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	solver, closeStore, err := initializeServices(ctx, settings, hub, logger)
	if err != nil {
		listener.Close()
		return "", nil, err
	}

	httpServer := &http.Server{Handler: api.NewServer(solver, hub, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		return errors.Join(err, closeStore())
	}
	return "http://" + listener.Addr().String(), shutdown, nil
}

// runStdioMCP serves MCP over stdio. It proxies to apiURL when that API is
// up, otherwise to an internal API on a loopback port.
func runStdioMCP(ctx context.Context, apiURL string, settings *config.Settings, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := apiURL
	if apiReachable(ctx, apiURL) {
		logger.Info().Str("url", apiURL).Msg("using external API server")
	} else {
		logger.Info().Str("url", apiURL).Msg("no external API server found, starting internal one")

		internalURL, shutdown, err := startInternalAPI(ctx, settings, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(); err != nil {
				logger.Warn().Err(err).Msg("internal API shutdown error")
			}
		}()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
