package env

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/tx-signer/internal/config"
)

// New returns the env subcommand printing the resolved service config.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the environment-resolved service configuration",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to marshal service config")
			}

			fmt.Println(string(out))
		},
	}
}
