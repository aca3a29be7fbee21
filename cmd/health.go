package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the API and the scoring provider",
	Run: func(_ *cobra.Command, _ []string) {
		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		api := e.client.Health(ctx)
		e.out.Health("api", api)

		provider := e.client.ProviderHealth(ctx)
		e.out.Health("scoring provider", provider)

		if !api.OK() || !provider.OK() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
