package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/semgrep-deps-export/pkg/errors"
)

// reposCommand creates the "repos" command. With --select it opens a picker
// and exports the chosen repository.
func (c *CLI) reposCommand() *cobra.Command {
	var selectRepo bool

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List the repositories of the deployment",
		Long: `List the repositories of the deployment. Requires a deployment slug.

With --select, pick one repository interactively and export only its
dependencies. Export flags apply to that export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c.applyLogLevel(cfg.LogLevel)
			if cfg.DeploymentSlug == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "listing repositories requires --deployment-slug or SEMGREP_DEPLOYMENT_SLUG")
			}

			client, ch, err := c.newClient(cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			spin := startSpinner(cmd.Context(), "Listing repositories...")
			repos, err := client.Repositories(cmd.Context())
			if err != nil {
				spin.fail(errors.UserMessage(err))
				printHint(err)
				return err
			}
			spin.succeed("Found %d repositories", len(repos))

			if len(repos) == 0 {
				printWarning("No repositories found for %s", cfg.DeploymentSlug)
				return nil
			}

			if !selectRepo {
				rows := make([][]string, len(repos))
				for i, r := range repos {
					rows[i] = repositoryColumns(r)
				}
				t := repositoryTable(rows, false).StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return listHeaderStyle
					}
					return lipgloss.NewStyle()
				})
				fmt.Println(t.Render())
				return nil
			}

			final, err := tea.NewProgram(NewRepoListModel(repos), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("repository picker: %w", err)
			}
			selected := final.(RepoListModel).Selected
			if selected == nil {
				printInfo("No repository selected")
				return nil
			}
			printInfo("Exporting %s", selected.Name)
			return c.runExport(cmd, selected)
		},
	}

	cmd.Flags().BoolVar(&selectRepo, "select", false, "pick a repository interactively and export it")
	addExportFlags(cmd.Flags())
	return cmd
}
