package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Geolens configuration interactively",
	Long: `Walk through the provider credentials, database locations and email
settings, then write the configuration file.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}

	newCfg := config.DefaultConfig()
	if config.Exists(path) {
		existing, err := config.Load(path)
		if err == nil {
			newCfg = existing
		}
		fmt.Printf("⚠️  Existing configuration found at %s, values are kept unless replaced.\n\n", path)
	}

	fmt.Println(FormatHeader("🔧 Geolens Configuration"))
	fmt.Println(FormatHeader("========================"))
	fmt.Println()

	// Provider credentials
	fmt.Println(FormatTitle("LLM providers"))
	if err := promptProviders(reader, newCfg); err != nil {
		return err
	}

	defaultProvider, err := promptOptional(reader,
		fmt.Sprintf("Default provider for unknown model ids [%s]: ", newCfg.LLM.DefaultProvider),
		newCfg.LLM.DefaultProvider)
	if err != nil {
		return err
	}
	newCfg.LLM.DefaultProvider = defaultProvider

	// HTTP server
	fmt.Println()
	fmt.Println(FormatTitle("API server"))
	port, err := promptWithRetry(reader,
		fmt.Sprintf("Port [%d]: ", newCfg.Server.Port),
		func(input string) (string, error) {
			if input == "" {
				return strconv.Itoa(newCfg.Server.Port), nil
			}
			n, err := validateNumber(input, 1, 65535)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(n), nil
		})
	if err != nil {
		return err
	}
	newCfg.Server.Port, _ = strconv.Atoi(port)

	// Storage
	fmt.Println()
	fmt.Println(FormatTitle("Storage"))
	sqliteURI, err := promptOptional(reader,
		fmt.Sprintf("SQLite path [%s]: ", newCfg.SQLDatabase.URI), newCfg.SQLDatabase.URI)
	if err != nil {
		return err
	}
	newCfg.SQLDatabase.URI = sqliteURI

	mongoURI, err := promptOptional(reader,
		fmt.Sprintf("MongoDB URI [%s]: ", newCfg.NoSQLDatabase.URI), newCfg.NoSQLDatabase.URI)
	if err != nil {
		return err
	}
	newCfg.NoSQLDatabase.URI = mongoURI

	// Email delivery
	fmt.Println()
	fmt.Println(FormatTitle("Email reports"))
	wantSMTP, err := promptYesNo(reader, "Configure SMTP for emailed reports? (y/N): ")
	if err != nil {
		return err
	}
	if wantSMTP {
		if err := promptSMTP(reader, newCfg); err != nil {
			return err
		}
	}

	if err := newCfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(FormatSuccess("✅ Configuration saved to " + path))
	fmt.Println("Run 'geolens migrate' to prepare the database, then 'geolens api' to start the server.")
	return nil
}

func promptProviders(reader *bufio.Reader, cfg *config.Config) error {
	providers := []struct {
		name    string
		current *string
	}{
		{"OpenAI", &cfg.LLM.OpenAIAPIKey},
		{"Anthropic", &cfg.LLM.AnthropicAPIKey},
		{"Google", &cfg.LLM.GoogleAPIKey},
		{"Perplexity", &cfg.LLM.PerplexityAPIKey},
	}

	for _, p := range providers {
		prompt := fmt.Sprintf("Configure %s? Current key: %s (y/N): ", p.name, maskSensitiveData(*p.current, "*"))
		want, err := promptYesNo(reader, prompt)
		if err != nil {
			return err
		}
		if !want {
			continue
		}

		key, err := promptWithRetry(reader, fmt.Sprintf("%s API key: ", p.name), func(input string) (string, error) {
			return validateAPIKey(input, p.name)
		})
		if err != nil {
			return err
		}
		*p.current = key
	}

	baseURL, err := promptWithRetry(reader,
		fmt.Sprintf("Ollama base URL [%s]: ", cfg.LLM.OllamaBaseURL),
		func(input string) (string, error) {
			if input == "" {
				return cfg.LLM.OllamaBaseURL, nil
			}
			return validateBaseURL(input)
		})
	if err != nil {
		return err
	}
	cfg.LLM.OllamaBaseURL = baseURL

	return nil
}

func promptSMTP(reader *bufio.Reader, cfg *config.Config) error {
	host, err := promptRequired(reader, "SMTP host: ")
	if err != nil {
		return err
	}
	cfg.SMTP.Host = host

	port, err := promptWithRetry(reader, "SMTP port [587]: ", func(input string) (string, error) {
		if input == "" {
			return "587", nil
		}
		n, err := validateNumber(input, 1, 65535)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	})
	if err != nil {
		return err
	}
	cfg.SMTP.Port, _ = strconv.Atoi(port)

	username, err := promptOptional(reader, "SMTP username (empty for none): ", "")
	if err != nil {
		return err
	}
	cfg.SMTP.Username = username

	if username != "" {
		password, err := promptRequired(reader, "SMTP password: ")
		if err != nil {
			return err
		}
		cfg.SMTP.Password = password
	}

	from, err := promptRequired(reader, "From address: ")
	if err != nil {
		return err
	}
	cfg.SMTP.From = from

	return nil
}
