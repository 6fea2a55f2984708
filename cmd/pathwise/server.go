package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/api"
	"github.com/kalambet/pathwise/internal/config"
	"github.com/kalambet/pathwise/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var noMCP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API and MCP tools (foreground)",
		Long: `Serve the read-only dashboard API on 127.0.0.1 and, unless --no-mcp is
given, the MCP tools over stdio.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), !noMCP)
		},
	}
	cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "do not serve MCP over stdio")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running pathwise server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stopServer()
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pathwise server and service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd.Context())
		},
	}
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "pathwise.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func serverURL(cfg config.Config) string {
	return fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
}

// probe reports whether url answers with 200 within two seconds.
func probe(ctx context.Context, url string) (bool, int) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, 0
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, 0
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, resp.StatusCode
}

func newRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

func runServer(ctx context.Context, withMCP bool) error {
	fmt.Fprintf(os.Stderr, "pathwise version %s\n", version)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	pidPath := pidFilePath(a.cfg.Storage.DataDir)
	if ok, _ := probe(ctx, serverURL(a.cfg)+"/health"); ok {
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("pathwise is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("pathwise is already running on port %d", a.cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", a.cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	deps := api.Deps{
		Records:   a.stats,
		Forecasts: a.forecasts,
		Gatherer:  reg,
		Logger:    logger,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if withMCP {
		stdioSrv := server.NewStdioServer(api.NewMCPServer(deps, version))
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("MCP stdio server error", zap.Error(err))
			}
		}()
		logger.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("pathwise is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop pathwise (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to pathwise (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	if ok, code := probe(ctx, serverURL(cfg)+"/health"); ok {
		printStatus("Server", "running on port %d", cfg.Server.Port)
	} else if code != 0 {
		printStatus("Server", "error (HTTP %d)", code)
	} else {
		printStatus("Server", "stopped")
	}

	// Any HTTP answer means the service is up; it has no health route.
	for _, svc := range []struct{ name, url string }{
		{"Advisor", cfg.Services.AdvisorURL},
		{"Backend", cfg.Services.BackendURL},
	} {
		if _, code := probe(ctx, svc.url); code != 0 {
			printStatus(svc.name, "reachable at %s", svc.url)
		} else {
			printStatus(svc.name, "unreachable at %s", svc.url)
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	printStatus("Config", "%s", config.ConfigFilePath())
	return nil
}
