package cli

import (
	"fmt"

	"github.com/harrisonrobin/tasklist/pkg/auth"
	"github.com/harrisonrobin/tasklist/pkg/config"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Runs the Google OAuth flow and caches the token next to the config
file (~/.config/tasklist unless --config points elsewhere).

Place the credentials.json downloaded from the Google Cloud Console in the
same directory first. Any previously cached token is discarded.`,
		Args: cobra.NoArgs,
		RunE: runAuth,
	}
}

func runAuth(cmd *cobra.Command, args []string) error {
	dir, err := config.CredentialsDir(configPath)
	if err != nil {
		return fmt.Errorf("could not find path to configuration directory: %w", err)
	}

	tokenFile, err := auth.ResetToken(dir)
	if err != nil {
		return fmt.Errorf("%w. Please delete it manually", err)
	}

	if _, err := auth.GetCalendarService(cmd.Context(), dir); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", tokenFile)
	return nil
}
