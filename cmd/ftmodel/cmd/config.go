package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ftmodel/configs"
	"github.com/Aman-CERP/ftmodel/internal/config"
	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/output"
)

// redacted replaces secrets in `config show`.
const redacted = "********"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the user and project configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/ftmodel/config.yaml)
  3. Project config (.ftmodel.yaml)
  4. Environment variables (FTMODEL_*)`,
		Example: `  # Create user config from template
  ftmodel config init

  # Create .ftmodel.yaml in the current directory
  ftmodel config init --project

  # Show effective configuration
  ftmodel config show

  # Print user config file path
  ftmodel config path

  # Undo the last 'config init --force'
  ftmodel config restore`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create the user configuration file, or with --project the project file
.ftmodel.yaml in the current directory.

An existing file is left alone unless --force is given, in which case it is
backed up first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, project)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&project, "project", false, "Create .ftmodel.yaml in the current directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Example: `  ftmodel config show
  ftmodel config show --json
  ftmodel config show --source defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var list, project bool

	cmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore a configuration file from a backup",
		Long: `Restore the user configuration file, or with --project .ftmodel.yaml, from
one of the backups kept by 'config init --force'. Without an argument the
newest backup is used. The current file is backed up before it is replaced.`,
		Example: `  ftmodel config restore --list
  ftmodel config restore
  ftmodel config restore ~/.config/ftmodel/config.yaml.bak.20260101-120000.000000000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup := ""
			if len(args) == 1 {
				backup = args[0]
			}
			return runConfigRestore(cmd, backup, list, project)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List available backups, newest first")
	cmd.Flags().BoolVar(&project, "project", false, "Restore .ftmodel.yaml in the current directory")

	return cmd
}

// configTarget returns the user config path, or the project file in cwd.
func configTarget(project bool) (string, error) {
	if !project {
		return config.GetUserConfigPath(), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, config.ProjectFiles[0]), nil
}

func runConfigInit(cmd *cobra.Command, force, project bool) error {
	out := output.New(cmd.OutOrStdout())

	path, err := configTarget(project)
	if err != nil {
		return err
	}
	template := configs.UserConfigTemplate
	if project {
		template = configs.ProjectConfigTemplate
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Hint("Use --force to replace it (a backup is kept)")
			return nil
		}
		backup, err := config.Backup(path)
		if err != nil {
			return err
		}
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New(errors.ErrCodeConfigPermission, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, []byte(template), 0644); err != nil {
		return errors.New(errors.ErrCodeConfigPermission, "failed to write config file: "+path, err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to match your Redis and models")
	out.Status("", "  2. Run 'ftmodel doctor' to verify the backend")
	out.Status("", "  3. Run 'ftmodel create-index --all' to build indexes")
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var (
		cfg  *config.Config
		desc string
		err  error
	)
	switch source {
	case "merged":
		cfg, err = loadConfig()
		desc = "merged (defaults + user + project + env)"
		if configFile != "" {
			desc = fmt.Sprintf("file (%s) + env", configFile)
		}
	case "user":
		path := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Hint("Run 'ftmodel config init' to create one")
			return nil
		}
		cfg, err = config.LoadUserConfig()
		desc = fmt.Sprintf("user (%s)", path)
	case "project":
		cwd, werr := os.Getwd()
		if werr != nil {
			return werr
		}
		path := config.ProjectConfigPath(cwd)
		if path == "" {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", filepath.Join(cwd, config.ProjectFiles[0]))
			out.Hint("Run 'ftmodel config init --project' to create one")
			return nil
		}
		cfg, err = config.LoadFile(path)
		desc = fmt.Sprintf("project (%s)", path)
	case "defaults":
		cfg = config.NewConfig()
		desc = "defaults (hardcoded)"
	default:
		return errors.Newf(errors.ErrCodeInvalidInput, "unknown source %q", source).
			WithSuggestion("Use merged, user, project or defaults")
	}
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Redis.Password != "" {
		shown.Redis.Password = redacted
	}
	if jsonOutput {
		return out.JSON(&shown)
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return errors.New(errors.ErrCodeInternal, "failed to marshal config", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "# Source: %s\n%s", desc, data)
	return err
}

func runConfigRestore(cmd *cobra.Command, backup string, list, project bool) error {
	out := output.New(cmd.OutOrStdout())

	path, err := configTarget(project)
	if err != nil {
		return err
	}
	backups, err := config.ListBackups(path)
	if err != nil {
		return err
	}

	if list {
		if len(backups) == 0 {
			out.Warning("No backups found")
			out.Statusf("📁", "Config: %s", path)
			return nil
		}
		for _, b := range backups {
			fmt.Fprintln(cmd.OutOrStdout(), b)
		}
		return nil
	}

	if backup == "" {
		if len(backups) == 0 {
			return errors.New(errors.ErrCodeConfigNotFound, "no backups of "+path, nil).
				WithSuggestion("Backups are created by 'ftmodel config init --force'")
		}
		backup = backups[0]
	}
	if err := config.Restore(path, backup); err != nil {
		return err
	}

	out.Success("Restored configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Statusf("💾", "From: %s", backup)
	return nil
}
