package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/vecino/internal/api"
	"github.com/kalambet/vecino/internal/config"
	"github.com/kalambet/vecino/internal/knowledge"
	"github.com/kalambet/vecino/internal/llm"
	"github.com/kalambet/vecino/internal/orchestrator"
	"github.com/kalambet/vecino/internal/retrieval"
	"github.com/kalambet/vecino/internal/settings"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the vecino server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running vecino server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vecino system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "vecino.pid")
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

// loadKnowledge builds the knowledge base from the configured sources: the
// knowledge file (or the embedded defaults when none is configured) plus any
// documents found in the docs directory.
func loadKnowledge(cfg config.Config) ([]retrieval.Entry, error) {
	var entries []retrieval.Entry
	if cfg.Knowledge.File != "" {
		loaded, err := knowledge.LoadFile(cfg.Knowledge.File)
		if err != nil {
			return nil, fmt.Errorf("loading knowledge file: %w", err)
		}
		entries = loaded
	} else {
		entries = knowledge.Default()
	}

	if cfg.Knowledge.DocsDir != "" {
		docs, err := knowledge.LoadDocsDir(cfg.Knowledge.DocsDir)
		if err != nil {
			return nil, fmt.Errorf("loading docs directory: %w", err)
		}
		entries = append(entries, docs...)
	}
	return entries, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "vecino version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Refuse to start when an instance already answers on the port.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("vecino is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("vecino is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := settings.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing settings store: %v\n", err)
		}
	}()

	entries, err := loadKnowledge(cfg)
	if err != nil {
		return err
	}
	slog.Info("knowledge base loaded", "entries", len(entries))

	generator := llm.Select(ctx, cfg.Ollama.BaseURL, cfg.Ollama.Model)

	orch := orchestrator.New(orchestrator.Config{
		Settings:     store,
		Generator:    generator,
		Knowledge:    entries,
		GroundedOnly: cfg.Chat.GroundedOnly,
	})

	handler := api.NewHandler(api.Deps{
		Orchestrator: orch,
		Settings:     store,
		Reload:       func() ([]retrieval.Entry, error) { return loadKnowledge(cfg) },
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "vecino listening on %s\n", addr)
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
		printError("vecino is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop vecino (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to vecino (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	var health struct {
		Status           string `json:"status"`
		KnowledgeEntries int    `json:"knowledge_entries"`
	}
	resp, err := client.Get(serverURL + "/health")
	switch {
	case err != nil:
		printStatus("Server", "stopped")
	case resp.StatusCode == http.StatusOK:
		printStatus("Server", "running on port %d", cfg.Server.Port)
		if decodeJSON(resp, &health) == nil {
			printStatus("Knowledge", "%d entries", health.KnowledgeEntries)
		}
	default:
		resp.Body.Close()
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
	}

	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	if cfg.Ollama.Model == "" {
		printStatus("Model", "not configured (placeholder replies)")
	} else {
		printStatus("Model", "%s", cfg.Ollama.Model)
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
