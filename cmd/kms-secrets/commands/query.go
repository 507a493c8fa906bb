package commands

import (
	"github.com/spf13/cobra"
)

func NewQueryCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "query <jq-expression>",
		Short: "Evaluate a jq expression over the decrypted values",
		Long: `Evaluate a jq expression against an object holding every decrypted
value keyed by namespace.

Examples:
  kms-secrets query '.config.hosts | length' --json-parse config
  kms-secrets query 'keys'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.loadManager(cmd.Context())
			if err != nil {
				return err
			}
			v, err := m.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.writeValue(v)
		},
	}
}
