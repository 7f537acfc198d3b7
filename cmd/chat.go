package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"gradescan/internal/assistant"
	"gradescan/internal/config"
	"gradescan/internal/logger"
	"gradescan/internal/store"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about a student's stored evaluations",
	Long: `Interactive chat over a student's graded exams. Answers come from the
stored transcripts, answer keys, and grading results for the given email.

Requires POSTGRES_URL and a running Ollama instance for embeddings.`,
	Example: `  gradescan chat --email student@example.com`,
	RunE:    runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("email", "", "Student email whose evaluations to query (required)")
	_ = chatCmd.MarkFlagRequired("email")
}

func runChat(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("chat")

	email, _ := cmd.Flags().GetString("email")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.StoreEnabled() {
		return fmt.Errorf("POSTGRES_URL must be set to use the chat assistant")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("failed to connect to evaluation store: %w", err)
	}
	defer st.Close()

	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	clientCfg.BaseURL = cfg.GroqBaseURL
	asst := assistant.New(st,
		assistant.NewEmbedder(cfg.OllamaBaseURL, cfg.EmbedModel),
		openai.NewClientWithConfig(clientCfg),
		assistant.Config{
			ChatModel:    cfg.ChatModel,
			TopK:         cfg.ChatTopK,
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		})

	fmt.Printf("Chatting about evaluations for %s. Type 'exit' to quit.\n", email)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := asst.Ask(ctx, email, question)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Msg("Chat request failed")
			fmt.Println("Sorry, there was an error processing your question.")
			continue
		}
		fmt.Println(answer)
	}

	return scanner.Err()
}
