package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"postboard/app/client"
	"postboard/app/config"
	"postboard/app/page"
	"postboard/app/repositories"

	"github.com/spf13/cobra"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

// NewRootCmd builds the postboard command tree.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     config.Config
	)

	root := &cobra.Command{
		Use:           "postboard",
		Short:         "Browse an employee's posts and comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = c
			config.SetupLogging(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file")

	root.AddCommand(
		newServeCmd(&cfg),
		newRenderCmd(&cfg),
		newUsersCmd(&cfg),
		newStateCmd(&cfg),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				cfg.Addr = addr
			}
			return RunAppServer(*cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configuration")
	return cmd
}

func newRenderCmd(cfg *config.Config) *cobra.Command {
	var (
		user string
		text bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the page for one user",
		Example: `  postboard render --user 1
  postboard render --user 3 --text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := client.New(cfg.APIURL, time.Duration(cfg.Timeout))
			if err != nil {
				return err
			}
			p, err := page.New(api, repositories.NewMemoryToggleRepository(), cfg.Options())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p.Init(ctx)
			p.Select(ctx, user)

			if text {
				out, err := p.Text()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			return p.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id to select (falls back to the configured user)")
	cmd.Flags().BoolVar(&text, "text", false, "print plain text instead of HTML")
	return cmd
}

func newUsersCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the users the picker offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := client.New(cfg.APIURL, time.Duration(cfg.Timeout))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			users := api.FetchUsers(ctx)
			if users == nil {
				return fmt.Errorf("no users from %s", cfg.APIURL)
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.Name, u.Username)
			}
			return nil
		},
	}
}

func newStateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage the badger toggle-state database",
	}

	var out string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = fmt.Sprintf("postboard_backup_%d.db", time.Now().Unix())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			defer f.Close()

			if _, err := Backup(cfg.BadgerPath, f); err != nil {
				os.Remove(out)
				return fmt.Errorf("backup %q: %w", cfg.BadgerPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backed up successfully to %s\n", out)
			return nil
		},
	}
	backup.Flags().StringVarP(&out, "out", "o", "", "backup file")

	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fi, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("backup file: %w", err)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", args[0])
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := Restore(cfg.BadgerPath, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored successfully")
			return nil
		},
	}

	var yes bool
	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone. [y/N] ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
				return nil
			}
			if err := Clean(cfg.BadgerPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database cleaned successfully")
			return nil
		},
	}
	clean.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(backup, restore, clean)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postboard version %s\n", CliVersion)
		},
	}
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}
