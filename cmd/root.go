package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "cv-ranker"

	defaultAPIURL = "http://localhost:8000/api"
)

type Config struct {
	API        *APIConfig        `mapstructure:"api"`
	Candidates *CandidatesConfig `mapstructure:"candidates"`
	Ranking    *RankingConfig    `mapstructure:"ranking"`
}

type APIConfig struct {
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
}

type CandidatesConfig struct {
	// Concurrency caps parallel evaluation requests. Zero means one per candidate.
	Concurrency int           `mapstructure:"concurrency"`
	Limit       int           `mapstructure:"limit"`
	Wait        time.Duration `mapstructure:"wait"`
}

type RankingConfig struct {
	MinimumScore  int      `mapstructure:"minimum-score"`
	Verdicts      []string `mapstructure:"verdicts"`
	EvaluatedOnly bool     `mapstructure:"evaluated-only"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-ranker ranks candidate resumes per job using stored evaluations",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"api.url":        "CV_RANKER_API_URL",
		"api.token-file": "CV_RANKER_TOKEN_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api.url", defaultAPIURL)
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("candidates.wait", "30s")
	viper.SetDefault("candidates.limit", 100)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the evaluation API")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine, an explicit or broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.API == nil {
		config.API = &APIConfig{URL: defaultAPIURL}
	}
	if config.Candidates == nil {
		config.Candidates = &CandidatesConfig{}
	}
	if config.Ranking == nil {
		config.Ranking = &RankingConfig{}
	}

	return config, nil
}
