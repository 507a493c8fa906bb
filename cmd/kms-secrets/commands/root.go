package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the kms-secrets command tree. Flags override the
// values loaded into app.Config.
func NewRootCommand(app *App, version string) *cobra.Command {
	cfg := app.Config

	rootCmd := &cobra.Command{
		Use:   "kms-secrets",
		Short: "Decrypt KMS ciphertexts and look up their values",
		Long: `kms-secrets decrypts every ciphertext found in the environment
(and, optionally, in a Secrets Manager bundle) through AWS KMS, then prints
the requested value. Values are masked unless --reveal is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.EnvPrefix, "prefix", cfg.EnvPrefix, "Environment variable prefix holding ciphertexts")
	rootCmd.PersistentFlags().StringVar(&cfg.BundleID, "bundle", cfg.BundleID, "Secrets Manager secret id holding a {namespace: ciphertext} map")
	rootCmd.PersistentFlags().StringSliceVar(&cfg.JSONNamespaces, "json-parse", cfg.JSONNamespaces, "Namespaces whose plaintext is parsed as JSON")
	rootCmd.PersistentFlags().StringVar(&cfg.AWSRegion, "region", cfg.AWSRegion, "AWS region")
	rootCmd.PersistentFlags().StringVar(&cfg.KMSKeyID, "key-id", cfg.KMSKeyID, "KMS key id to pin decryption to")

	rootCmd.PersistentFlags().StringToStringVar(&cfg.EncryptionContext, "encryption-context", cfg.EncryptionContext, "KMS encryption context as key=value pairs")
	rootCmd.PersistentFlags().BoolVar(&cfg.Reveal, "reveal", cfg.Reveal, "Print plaintext instead of masked values")
	rootCmd.PersistentFlags().Float64Var(&cfg.DecryptRPS, "decrypt-rps", cfg.DecryptRPS, "Maximum KMS decrypt calls per second (0 = unlimited)")
	rootCmd.PersistentFlags().IntVar(&cfg.DecryptBurst, "decrypt-burst", cfg.DecryptBurst, "Burst size for --decrypt-rps")

	rootCmd.AddCommand(
		NewGetCommand(app),
		NewQueryCommand(app),
		NewListCommand(app),
	)
	return rootCmd
}
