// Command selfplay runs one or more LLM-vs-LLM games through the move
// decision pipeline and prints each game's result, per spec.md §6.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/randomtoy/chess-llm-arena/internal/config"
	"github.com/randomtoy/chess-llm-arena/internal/decision"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
	"github.com/randomtoy/chess-llm-arena/internal/driver"
	"github.com/randomtoy/chess-llm-arena/internal/modelclient"
	"github.com/randomtoy/chess-llm-arena/internal/observability"
	"github.com/randomtoy/chess-llm-arena/internal/promptbuilder"
)

var (
	whiteModel  string
	blackModel  string
	games       int
	concurrency int
	logFile     string
	seed        int64
)

func main() {
	root := &cobra.Command{
		Use:   "selfplay",
		Short: "Run LLM-vs-LLM self-play games through the move decision pipeline",
		RunE:  runSelfplay,
	}

	root.Flags().StringVar(&whiteModel, "white-model", "gpt-4o", "model id for the white player")
	root.Flags().StringVar(&blackModel, "black-model", "claude-3-5-sonnet", "model id for the black player")
	root.Flags().IntVar(&games, "games", 1, "number of games to play")
	root.Flags().IntVar(&concurrency, "concurrency", 0, "max games running at once (0 = from config)")
	root.Flags().StringVar(&logFile, "log-file", "", "write structured event log here instead of stdout")
	root.Flags().Int64Var(&seed, "seed", 0, "seed for legal-move sampling (0 = time-based)")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runSelfplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	sink, closeSink, err := buildSink(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("building event sink: %w", err)
	}
	defer closeSink()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	registry := buildRegistry(httpClient, cfg)

	rngSeed := uint64(seed)
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	loop := decision.New(registry, sink, promptbuilder.NewRNG(rngSeed))
	d := driver.New(loop)
	pool := driver.NewPool(d, cfg.Concurrency)

	states := make([]*match.GameState, games)
	for i := range states {
		white := match.PlayerBinding{PlayerID: "white", ModelID: whiteModel}
		black := match.PlayerBinding{PlayerID: "black", ModelID: blackModel}
		states[i] = match.NewGameState(uuid.New(), white, black)
	}

	hooks := driver.Hooks{
		OnGameEnd: func(gs *match.GameState) {
			fmt.Printf("game %s: %s\n", gs.ID, resultLine(gs))
		},
	}

	return pool.RunAll(context.Background(), states, hooks)
}

func buildRegistry(httpClient *http.Client, cfg *config.Config) *modelclient.Registry {
	var openai *modelclient.OpenAIProvider
	if cfg.OpenAI.APIKey != "" {
		openai = modelclient.NewOpenAIProvider(httpClient, cfg.OpenAI.APIKey)
		if cfg.OpenAI.Endpoint != "" {
			openai.Endpoint = cfg.OpenAI.Endpoint
		}
	}

	var anthropic *modelclient.AnthropicProvider
	if cfg.Anthropic.APIKey != "" {
		anthropic = modelclient.NewAnthropicProvider(httpClient, cfg.Anthropic.APIKey)
		if cfg.Anthropic.Endpoint != "" {
			anthropic.Endpoint = cfg.Anthropic.Endpoint
		}
	}

	var xai *modelclient.XAIProvider
	if cfg.XAI.APIKey != "" {
		xai = modelclient.NewXAIProvider(httpClient, cfg.XAI.APIKey)
		if cfg.XAI.Endpoint != "" {
			xai.Endpoint = cfg.XAI.Endpoint
		}
	}

	return modelclient.NewDefaultRegistry(openai, anthropic, xai)
}

func resultLine(gs *match.GameState) string {
	if gs.Termination == nil {
		return "unfinished"
	}
	if gs.Termination.Error != nil {
		return fmt.Sprintf("error: %v", gs.Termination.Error)
	}
	return fmt.Sprintf("%s (%v, %d plies)", gs.Termination.Result, gs.Termination.Method, len(gs.UCIHistory))
}

func buildSink(path string) (observability.EventSink, func(), error) {
	if path == "" {
		return observability.NewZerologSink(os.Stdout), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return observability.NewZerologSink(f), func() { f.Close() }, nil
}
