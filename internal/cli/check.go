package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
)

// checkCommand creates the "check" command, which tests the API connection.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test the connection to the Semgrep API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c.applyLogLevel(cfg.LogLevel)

			client, ch, err := c.newClient(cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			printKeyValue("Deployment", cfg.DeploymentID)
			if cfg.DeploymentSlug != "" {
				printKeyValue("Slug", cfg.DeploymentSlug)
			}
			printKeyValue("Token", client.MaskedToken())
			printKeyValue("API", client.Config().BaseURL)

			spin := startSpinner(cmd.Context(), "Testing API connection...")
			if err := client.CheckConnection(cmd.Context()); err != nil {
				spin.fail(errors.UserMessage(err))
				printHint(err)
				return err
			}
			spin.succeed("API connection test successful")
			printNextStep("Run an export", appName)
			return nil
		},
	}
}
