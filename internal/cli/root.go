package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/config"
	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/db/mongodb"
	"github.com/AI2HU/geolens/internal/db/sqlite"
	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/llm/anthropic"
	"github.com/AI2HU/geolens/internal/llm/google"
	"github.com/AI2HU/geolens/internal/llm/ollama"
	"github.com/AI2HU/geolens/internal/llm/openai"
	"github.com/AI2HU/geolens/internal/llm/perplexity"
	"github.com/AI2HU/geolens/internal/logger"
)

var (
	cfgFile     string
	cfg         *config.Config
	sqlStore    *sqlite.SQLite
	nosqlStore  *mongodb.MongoDB
	llmRegistry *llm.Registry
	analyzer    *geo.Analyzer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "geolens",
	Short: "GEO analysis for brand visibility in LLM answers",
	Long: `Geolens measures how visible a brand is in generative search. It asks a set
of LLMs the questions real customers ask, detects where (and how favorably)
the brand appears in each answer, and aggregates the results into mention
rates, positions, sentiment and competitor pressure.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The init command writes the config this loads
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}
		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found. Run 'geolens init' to create one")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLevel(cfg.LogLevel), nil)

		llmRegistry = buildRegistry(cfg)
		analyzer = buildAnalyzer(cfg, llmRegistry)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if sqlStore != nil {
			if err := sqlStore.Disconnect(ctx); err != nil {
				return err
			}
		}
		if nosqlStore != nil {
			return nosqlStore.Disconnect(ctx)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.geolens/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(migrateCmd)
}

// buildRegistry registers every provider the config has credentials for.
// Ollama needs no key, so it is always available.
func buildRegistry(cfg *config.Config) *llm.Registry {
	registry := llm.NewRegistry()

	if cfg.LLM.OpenAIAPIKey != "" {
		registry.Register(openai.New(cfg.LLM.OpenAIAPIKey, ""))
	}
	if cfg.LLM.AnthropicAPIKey != "" {
		registry.Register(anthropic.New(cfg.LLM.AnthropicAPIKey, ""))
	}
	if cfg.LLM.GoogleAPIKey != "" {
		registry.Register(google.New(cfg.LLM.GoogleAPIKey))
	}
	if cfg.LLM.PerplexityAPIKey != "" {
		registry.Register(perplexity.New(cfg.LLM.PerplexityAPIKey))
	}
	registry.Register(ollama.New(cfg.LLM.OllamaBaseURL))

	return registry
}

func buildAnalyzer(cfg *config.Config, registry *llm.Registry) *geo.Analyzer {
	gateway := geo.NewGateway(registry, geo.GatewayConfig{
		Temperature:       cfg.LLM.Temperature,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		DefaultProvider:   cfg.LLM.DefaultProvider,
	})
	interpreter := geo.NewInterpreter(registry, geo.InterpreterConfig{
		Model:           cfg.LLM.ExtractionModel,
		DefaultProvider: cfg.LLM.DefaultProvider,
	})
	return geo.NewAnalyzer(gateway, interpreter)
}

// connectSQL opens the sessions and schedules store
func connectSQL(ctx context.Context) error {
	store, err := sqlite.New(&db.Config{
		Provider: cfg.SQLDatabase.Provider,
		URI:      cfg.SQLDatabase.URI,
		Database: cfg.SQLDatabase.Database,
	})
	if err != nil {
		return fmt.Errorf("failed to create SQL database: %w", err)
	}
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to SQL database: %w", err)
	}
	sqlStore = store
	return nil
}

// connectNoSQL opens the analyses and reports store
func connectNoSQL(ctx context.Context) error {
	store, err := mongodb.New(&db.Config{
		Provider: cfg.NoSQLDatabase.Provider,
		URI:      cfg.NoSQLDatabase.URI,
		Database: cfg.NoSQLDatabase.Database,
	})
	if err != nil {
		return fmt.Errorf("failed to create NoSQL database: %w", err)
	}
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NoSQL database: %w", err)
	}
	nosqlStore = store
	return nil
}
