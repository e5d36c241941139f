// Package cli provides the command-line interface for blueprint.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarch-dev/blueprint/i18n"
	"github.com/jarch-dev/blueprint/internal/cli/commands"
	"github.com/jarch-dev/blueprint/internal/config"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Blueprint - constrained editor for generator input documents",
		Long: `Blueprint edits and validates the two JSON documents a project generator
consumes: app-config.json (application and database settings) and
entity-config.json (entities, fields and relations).

Every edit is checked against a path registry; structural changes only happen
through dedicated operations, and both documents must be free of violations
before they can be handed to the generator.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			i18n.SetLanguage(cfg.Lang)
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./blueprint.yaml)")
	pf.StringP("project", "p", "", "Project name for saves")
	pf.String("store", "", "Path to the saves database")
	pf.String("output", "", "Output mode (table|json|plain)")
	pf.String("lang", "", "Message language (en|ja)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-format", "", "Log format (text|json)")
	pf.Int("history-depth", 0, "Undo history depth")
	pf.Int("max-depth", 0, "Maximum JSON nesting depth when decoding")
	pf.String("generator-url", "", "Base URL of the generation service")
	pf.Duration("generator-timeout", 0, "Overall timeout for a generation")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "plain"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewNewCommand())
	rootCmd.AddCommand(commands.NewExampleCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewApplyCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewSaveCommand())
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewSavesCommand())
	rootCmd.AddCommand(commands.NewBundleCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
