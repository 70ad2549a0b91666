// Command nessie-mcp starts the banking MCP server over SSE.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/10aParikh/nessie-mcp-server/internal/config"
	"github.com/10aParikh/nessie-mcp-server/internal/logging"
	"github.com/10aParikh/nessie-mcp-server/pkg/banking"
	"github.com/10aParikh/nessie-mcp-server/pkg/nessie"
	"github.com/10aParikh/nessie-mcp-server/pkg/server"
	"github.com/10aParikh/nessie-mcp-server/pkg/transport/sse"
)

func main() {
	cfg := config.Load()

	loggerFactory := logging.NewLoggerFactory(cfg.LogLevel)
	logger := loggerFactory.CreateLogger("main")

	if cfg.NessieAPIKey == "" {
		logging.Warn(logger, "NESSIE_API_KEY not set; every banking API call will fail until it is configured")
	}

	client := nessie.New(cfg.NessieBaseURL, cfg.NessieAPIKey, nil)

	srv := server.NewServer(
		server.WithServerName("nessie-mcp"),
		server.WithServerVersion("1.0.0"),
		server.WithLoggerFactory(loggerFactory),
	)

	if err := srv.RegisterTool(banking.GetCustomerAccountsTool(client)); err != nil {
		logging.Fatal(logger, "failed to register tool", "error", err)
	}
	if err := srv.RegisterTool(banking.TransferMoneyTool(client)); err != nil {
		logging.Fatal(logger, "failed to register tool", "error", err)
	}

	endpoints := sse.NewEndpoints(srv,
		sse.WithLogger(loggerFactory.CreateLogger("sse")),
		sse.WithHeartbeat(time.Duration(cfg.HeartbeatSeconds)*time.Second),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/health", handleHealth)
	endpoints.Register(router)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.Info(logger, "starting server", "port", cfg.Port, "upstream", cfg.NessieBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal(logger, "server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info(logger, "shutting down")
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Error(logger, "forced shutdown", "error", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
