package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/render"
	"github.com/spigell/cv-ranker/internal/secrets"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

// env holds what every command needs.
type env struct {
	config *Config
	logger *zap.Logger
	client *store.Client
	out    *render.Renderer
}

func newEnv() *env {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	token, err := secrets.Load(secrets.Source{
		Name:     "api token",
		File:     config.API.TokenFile,
		Value:    config.API.Token,
		Env:      "CV_RANKER_TOKEN",
		Optional: true,
	})
	if err != nil {
		l.Fatal("loading api token",
			zap.Error(err),
			zap.String("hint", "set CV_RANKER_TOKEN_FILE or the 'api.token-file' key in the configuration file"),
		)
	}

	client := store.New(l, token)
	if u := strings.TrimSpace(config.API.URL); u != "" {
		client.APIURL = u
	}
	if config.API.Timeout > 0 {
		client.HTTPClient.Timeout = config.API.Timeout
	}
	if config.API.UserAgent != "" {
		client.UserAgent = config.API.UserAgent
	}

	l.Debug("starting", zap.String("version", version), zap.String("api_url", client.APIURL))

	colored := !viper.GetBool("no-color") && !color.NoColor

	return &env{
		config: config,
		logger: l,
		client: client,
		out:    render.New(os.Stdout, colored),
	}
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// invalid reports a user error and exits before any request is made.
func invalid(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("skip", 0, "number of records to skip")
	cmd.Flags().Int("limit", 100, "number of records to return")
}

func pageFrom(cmd *cobra.Command) store.Page {
	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.Page{Skip: skip, Limit: limit}
}

func requireArg(args []string, i int, what string) string {
	if len(args) <= i || strings.TrimSpace(args[i]) == "" {
		invalid("%s is required", what)
	}
	return strings.TrimSpace(args[i])
}

func readText(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(data), nil
}
