package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newTokenCmd signs a bearer token for the identity given by the global
// --as/--role/--client flags.
func newTokenCmd(app *App, who *identity) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		Example: `  crm token --as emp-42 --role project_manager
  crm token --as portal --role client --client 7c1e... --ttl 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Auth == nil {
				return errors.New("no JWT secret configured (set CRM_JWT_SECRET)")
			}
			caller, err := who.caller()
			if err != nil {
				return err
			}
			tok, err := app.Auth.Issue(caller, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
