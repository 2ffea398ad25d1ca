package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/ui"
)

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved session so the next run logs in again.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store := session.NewStore(a.cfg.CredentialsFile)
			if err := store.Clear(); err != nil {
				return err
			}
			a.logger.Debug("session cleared", zap.String("path", store.Path()))
			ui.Success("Removed saved session %s", store.Path())
			return nil
		},
	}
}
