package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"albumrag/internal/config"
	"albumrag/internal/logger"
	"albumrag/internal/server"
	"albumrag/internal/service"
	"albumrag/internal/tui"
)

var (
	cfgPath  string
	logLevel string
	logJSON  bool
	topK     int
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "albumrag",
		Short:         "Question answering over album liner notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (uses ./config.yaml or ~/.config/albumrag/config.yaml if not provided)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ingest the corpus and answer one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), true, func(ctx context.Context, a *app) error {
				ans, err := a.svc.AnswerQuery(ctx, strings.Join(args, " "), topK)
				if err != nil {
					return err
				}
				r := ans.Routing
				fmt.Printf("[%s via %s, confidence %.2f | sections: %s | albums: %s]\n\n%s\n",
					r.QueryType, r.Method, r.Confidence, strings.Join(r.Sections, ", "), strings.Join(r.Albums, ", "), ans.Answer)
				return nil
			})
		},
	}
	askCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Passages per search (0 uses retrieval.default_k)")

	routeCmd := &cobra.Command{
		Use:   "route [question]",
		Short: "Print the routing plan for a question as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), false, func(ctx context.Context, a *app) error {
				plan, err := a.svc.Route(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printJSON(plan)
			})
		},
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the corpus into the vector store and print album summaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), false, func(ctx context.Context, a *app) error {
				report, err := a.svc.Ingest(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Ingested %d documents into %d chunks.\n", report.Documents, report.Chunks)
				fmt.Println(formatSummaries(report))
				return nil
			})
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, false, func(ctx context.Context, a *app) error {
				if a.cfg.Corpus.IngestOnStart {
					if _, err := a.svc.Ingest(ctx); err != nil {
						return fmt.Errorf("ingest failed: %w", err)
					}
				}
				return server.New(a.svc, a.cfg.Server, a.metrics, a.log).Run(ctx)
			})
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ingest the corpus and open the interactive chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), false, func(ctx context.Context, a *app) error {
				report, err := a.svc.Ingest(ctx)
				if err != nil {
					return fmt.Errorf("ingest failed: %w", err)
				}
				m := tui.New(a.svc, formatSummaries(report), a.svc.DefaultK(), a.cfg.Server.RequestTimeout())
				_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
				return err
			})
		},
	}

	rootCmd.AddCommand(askCmd, routeCmd, ingestCmd, serveCmd, chatCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads config, builds the component graph and runs fn. With
// ingest set the corpus is loaded first.
func withApp(ctx context.Context, ingest bool, fn func(context.Context, *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.JSON = cfg.Log.JSON || logJSON
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger.Init(logCfg)
	log := logger.GetDefault()

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close vector store", "error", err)
		}
	}()
	if ingest {
		if _, err := a.svc.Ingest(ctx); err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}
	return fn(ctx, a)
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	logger.Debug("using config", "path", path)
	return cfg, nil
}

func formatSummaries(report *service.IngestReport) string {
	albums := make([]string, 0, len(report.Summaries))
	for album := range report.Summaries {
		albums = append(albums, album)
	}
	sort.Strings(albums)
	var b strings.Builder
	for _, album := range albums {
		fmt.Fprintf(&b, "%s: %s\n", album, report.Summaries[album])
	}
	return strings.TrimRight(b.String(), "\n")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
