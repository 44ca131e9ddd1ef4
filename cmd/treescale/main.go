package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/treescale/internal/config"
	"github.com/danmuck/treescale/internal/logging"
)

const version = "0.1.0"

// app carries state resolved by the root command for its subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:           "treescale [commands]",
		Short:         "Tree-addressed event tooling: encode, decode and relay event records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("TREESCALE_CONFIG"), "path to treescale.toml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error, off)")

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newEventCmd(a),
	)
	return root
}

func (a *app) init() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	logging.ConfigureRuntime("treescale")
	level := logging.ResolveLevel(a.logLevel, a.cfg.LogLevel)
	if !logging.SetLevel(level) {
		return fmt.Errorf("invalid log level %q", level)
	}
	if a.configPath != "" {
		log.Debug().Str("path", a.configPath).Msg("loaded treescale config")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Prints version of program",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treescale %s\n", version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config [commands]",
		Short: "Command for handling configuration files",
	}
	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Writes a default treescale.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "treescale.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validates a treescale.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", args[0])
			return nil
		},
	}
	cfgCmd.AddCommand(initCmd, validateCmd)
	return cfgCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
