package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"gradescan/internal/assistant"
	"gradescan/internal/config"
	"gradescan/internal/logger"
	"gradescan/internal/progress"
	"gradescan/internal/server"
	"gradescan/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the grading HTTP server",
	Long: `Start the HTTP server that accepts exam uploads, streams grading
progress over WebSocket, renders PDF reports, and answers student questions
about stored evaluations.

The evaluation store and chat assistant activate when POSTGRES_URL is set;
without it the server still grades and reports, it just does not persist.`,
	Example: `  # Serve on the configured address (default :8000)
  gradescan serve

  # Serve on a custom address
  gradescan serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ServerAddr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	var st *store.Store
	var asst *assistant.Assistant
	if cfg.StoreEnabled() {
		st, err = store.New(cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to connect to evaluation store: %w", err)
		}
		defer st.Close()

		if err := st.Migrate(ctx, cfg.EmbedDim); err != nil {
			return err
		}

		clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
		clientCfg.BaseURL = cfg.GroqBaseURL
		asst = assistant.New(st,
			assistant.NewEmbedder(cfg.OllamaBaseURL, cfg.EmbedModel),
			openai.NewClientWithConfig(clientCfg),
			assistant.Config{
				ChatModel:    cfg.ChatModel,
				TopK:         cfg.ChatTopK,
				ChunkSize:    cfg.ChunkSize,
				ChunkOverlap: cfg.ChunkOverlap,
			})
		log.Info().Msg("Evaluation store and chat assistant enabled")
	} else {
		log.Info().Msg("POSTGRES_URL not set, running without persistence")
	}

	registry := progress.NewRegistry()
	srv := server.New(cfg, pipe, registry, st, asst)

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		return err
	}

	log.Info().Msg("Server shut down")
	return nil
}
