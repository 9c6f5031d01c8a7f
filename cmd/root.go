package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/tx-signer/cmd/env"
	"github/chapool/tx-signer/cmd/sign"
	"github/chapool/tx-signer/internal/config"
	"github/chapool/tx-signer/internal/util"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "tx-signer",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Signs Ethereum transactions and personal messages through a selectable
signing backend. Requires configuration through ENV.`, config.ModuleName),
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cfg := config.DefaultServiceConfigFromEnv()
		zerolog.SetGlobalLevel(util.LogLevelFromString(cfg.Logger.Level))
		if cfg.Logger.PrettyPrintConsole {
			log.Logger = log.Output(zerolog.NewConsoleWriter())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		env.New(),
		sign.New(),
		sign.NewVerify(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
