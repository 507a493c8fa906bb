package commands

import (
	"github.com/spf13/cobra"
)

func NewGetCommand(app *App) *cobra.Command {
	var def string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print one decrypted value",
		Long: `Print the value found at a dotted path, such as "db.password".
The first segment is the secret's namespace.

Examples:
  KMS_SECRET_DB=AQICAHh... kms-secrets get db --reveal
  kms-secrets get config.api.key --json-parse config --default none`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.loadManager(cmd.Context())
			if err != nil {
				return err
			}

			var fallback any
			if cmd.Flags().Changed("default") {
				fallback = def
			}
			v, err := m.Get(args[0], fallback)
			if err != nil {
				return err
			}
			return app.writeValue(v)
		},
	}

	cmd.Flags().StringVar(&def, "default", "", "Value printed when the path does not resolve")
	return cmd
}
