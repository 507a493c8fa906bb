package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the namespaces that decrypted successfully",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.loadManager(cmd.Context())
			if err != nil {
				return err
			}
			for _, ns := range m.Namespaces() {
				if _, err := fmt.Fprintln(app.Out, ns); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
