package sign

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/tx-signer/internal/config"
	"github/chapool/tx-signer/internal/signing"
	"github/chapool/tx-signer/internal/signing/backend"
	"github/chapool/tx-signer/internal/util/command"
	"golang.org/x/term"
)

const requestFlag = "request"

// New returns the sign subcommand group.
func New() *cobra.Command {
	return command.NewSubcommandGroup("sign",
		newTransaction(),
		newMessage(),
	)
}

func newTransaction() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transaction",
		Short: "Signs a transaction request read from a JSON file",
		Run: func(cmd *cobra.Command, _ []string) {
			requestFile, err := cmd.Flags().GetString(requestFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read request flag")
			}

			var req signing.TransactionRequest
			if err := readRequest(requestFile, &req); err != nil {
				log.Fatal().Err(err).Msg("Failed to read transaction request")
			}

			svc, err := newLocalService()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize signing service")
			}

			signed, err := svc.SignTransaction(context.Background(), &req)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to sign transaction")
			}

			fmt.Println(signed)
		},
	}

	cmd.Flags().StringP(requestFlag, "r", "", "Path to the transaction request JSON file")

	return cmd
}

func newMessage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Signs a personal message request read from a JSON file",
		Run: func(cmd *cobra.Command, _ []string) {
			requestFile, err := cmd.Flags().GetString(requestFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read request flag")
			}

			var req signing.MessageRequest
			if err := readRequest(requestFile, &req); err != nil {
				log.Fatal().Err(err).Msg("Failed to read message request")
			}

			svc, err := newLocalService()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize signing service")
			}

			signature, err := svc.SignPersonalMessage(context.Background(), &req)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to sign message")
			}

			fmt.Println(signature)
		},
	}

	cmd.Flags().StringP(requestFlag, "r", "", "Path to the message request JSON file")

	return cmd
}

// NewVerify returns the verify subcommand.
func NewVerify() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifies a personal message signature read from a JSON file",
		Run: func(cmd *cobra.Command, _ []string) {
			requestFile, err := cmd.Flags().GetString(requestFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read request flag")
			}

			var req signing.VerifyRequest
			if err := readRequest(requestFile, &req); err != nil {
				log.Fatal().Err(err).Msg("Failed to read verify request")
			}

			svc, err := newLocalService()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize signing service")
			}

			fmt.Println(svc.VerifyMessage(context.Background(), &req))
		},
	}

	cmd.Flags().StringP(requestFlag, "r", "", "Path to the verify request JSON file")

	return cmd
}

// newLocalService builds a signing service backed by the in-memory key.
// Device backends need a vendor transport and are wired by embedding
// applications, not by this CLI.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func newLocalService() (signing.Service, error) {
	cfg := config.DefaultServiceConfigFromEnv()

	if cfg.Signing.Backend != config.BackendLocalKey {
		return nil, errors.Errorf("backend %q requires an external device transport", cfg.Signing.Backend)
	}

	mnemonic, err := promptSecret("Mnemonic: ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mnemonic")
	}
	password, err := promptSecret("Passphrase (optional): ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read passphrase")
	}

	seedManager := backend.NewSeedManager()
	if err := seedManager.Initialize(mnemonic, password); err != nil {
		return nil, errors.Wrap(err, "failed to initialize seed")
	}

	local, err := backend.NewLocal(seedManager)
	if err != nil {
		return nil, err
	}

	return signing.NewService(local, cfg.Signing.DerivationPath)
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func readRequest(path string, out any) error {
	if path == "" {
		return errors.New("request file is required, pass --request")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read request file")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to parse request file")
	}

	return nil
}
