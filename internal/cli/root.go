package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/NandiniGupta213/crm/internal/config"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/metrics"
	"github.com/NandiniGupta213/crm/internal/server"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/spf13/cobra"
)

// App holds everything the commands need. Metrics may be nil.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Services *service.Services
	Auth     *server.Authenticator
	Metrics  *metrics.Metrics
	// Now is the clock used for relative dates; nil means time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// identity is the caller local commands act as.
type identity struct {
	id       string
	name     string
	role     string
	clientID string
}

func (i identity) caller() (domain.Caller, error) {
	role, ok := domain.ParseRole(i.role)
	if !ok {
		return domain.Caller{}, fmt.Errorf("unknown role %q", i.role)
	}
	return domain.Caller{ID: i.id, Name: i.name, Role: role, ClientID: i.clientID}, nil
}

// NewRootCmd creates the top-level "crm" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var who identity

	root := &cobra.Command{
		Use:           "crm",
		Short:         "Project, task and invoice tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&who.id, "as", "cli", "user id local commands act as")
	root.PersistentFlags().StringVar(&who.name, "as-name", "Command line", "display name recorded in history")
	root.PersistentFlags().StringVar(&who.role, "role", string(domain.RoleAdmin), "role local commands act with")
	root.PersistentFlags().StringVar(&who.clientID, "client", "", "client id when acting with the client role")

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newTokenCmd(app, &who),
		newProjectCmd(app, &who),
		newTaskCmd(app, &who),
		newStatsCmd(app, &who),
	)

	return root
}
