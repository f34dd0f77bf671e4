package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"holamundo/internal/config"
	"holamundo/internal/export"
	"holamundo/internal/logging"
	"holamundo/internal/result"
	"holamundo/internal/server"
	"holamundo/internal/service"
	"holamundo/internal/study"
	"holamundo/internal/tui"
)

var levels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

type rootFlags struct {
	configPath string
	level      string
	testMode   bool
}

type inputFlags struct {
	url  string
	text string
	file string
}

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:          "holamundo",
		Short:        "Turn Spanish articles into study material",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "path to YAML config (default ./holamundo.yaml or ~/.config/holamundo/config.yaml)")
	root.PersistentFlags().StringVar(&rf.level, "level", "B1", "student level: "+strings.Join(levels, ", "))
	root.PersistentFlags().BoolVar(&rf.testMode, "test-mode", false, "use canned responses instead of the generative backend")

	root.AddCommand(newGenerateCmd(&rf), newStudyCmd(&rf), newServeCmd(&rf))
	return root
}

func newGenerateCmd(rf *rootFlags) *cobra.Command {
	var in inputFlags
	var format, out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate study material and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			run, err := generate(cmd.Context(), cfg, logger, rf, in)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			switch format {
			case "json":
				return export.JSON(w, run)
			case "markdown", "md":
				_, err := io.WriteString(w, export.Markdown(run, result.DecodeAll(run.Results)))
				return err
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func newStudyCmd(rf *rootFlags) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Generate study material and practise it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			// The terminal belongs to the UI.
			if cfg.Log.File == "" {
				cfg.Log.File = defaultLogFile()
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Generating study material...")
			run, err := a.pipeline.Generate(cmd.Context(), service.Request{
				Input:    readInput(in),
				Level:    rf.level,
				TestMode: rf.testMode || cfg.Generation.TestMode,
			})
			if err != nil {
				return err
			}
			entries := result.DecodeAll(run.Results)
			for _, e := range entries {
				if e.Err != nil {
					logger.Warn("malformed result", zap.String("template", e.Name), zap.Error(e.Err))
				}
			}
			session := study.NewSession(entries, run.Level, rf.testMode || cfg.Generation.TestMode, cfg.Study.Tiers)
			m := tui.New(cmd.Context(), a.orchestrator, session, run.Summary, export.Markdown(run, entries))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}

func newServeCmd(rf *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation and feedback HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			h := server.NewHandler(a.pipeline, a.orchestrator, rf.level, rf.testMode || cfg.Generation.TestMode, logger.Named("http"))
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.NewRouter(h),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				errCh <- srv.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}
			logger.Info("http server stopping")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	cmd.Flags().StringVar(&in.url, "url", "", "article URL to fetch")
	cmd.Flags().StringVar(&in.text, "text", "", "Spanish text to study")
	cmd.Flags().StringVar(&in.file, "file", "", "read the text from a file")
	cmd.MarkFlagsMutuallyExclusive("url", "text", "file")
	cmd.MarkFlagsOneRequired("url", "text", "file")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if in.file != "" {
			data, err := os.ReadFile(in.file)
			if err != nil {
				return err
			}
			in.text = string(data)
		}
		return nil
	}
}

func readInput(in inputFlags) string {
	if in.url != "" {
		return in.url
	}
	return in.text
}

func generate(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, rf *rootFlags, in inputFlags) (*service.Run, error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	run, err := a.pipeline.Generate(ctx, service.Request{
		Input:    readInput(in),
		Level:    rf.level,
		TestMode: rf.testMode || cfg.Generation.TestMode,
	})
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, err
	}
	return run, nil
}

func loadConfig(rf *rootFlags) (*config.AppConfig, error) {
	if !validLevel(rf.level) {
		return nil, fmt.Errorf("unknown level %q, want one of %s", rf.level, strings.Join(levels, ", "))
	}
	rf.level = strings.ToUpper(rf.level)
	if rf.configPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(rf.configPath)
}

func validLevel(l string) bool {
	for _, v := range levels {
		if strings.EqualFold(v, l) {
			return true
		}
	}
	return false
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "holamundo", "holamundo.log")
}
