package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"upload-mapper/internal/automapper"
	"upload-mapper/internal/config"
	"upload-mapper/internal/logger"
	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
	"upload-mapper/internal/schema"
	"upload-mapper/internal/workbench"
)

type rootFlags struct {
	configPath   string
	schemaPath   string
	synonymsPath string
	logLevel     string
	metricsPath  string
}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *prometheus.Registry
	nav        *navigator.Navigator
	automapper *automapper.Automapper
	workbench  *workbench.Workbench
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     app
	)

	cmd := &cobra.Command{
		Use:           "upload-mapper",
		Short:         "Map spreadsheet columns onto a collections database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newApp(flags)
			if err != nil {
				return err
			}

			a = *built

			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			_ = a.logger.Sync()

			if flags.metricsPath == "" {
				return nil
			}

			if err := prometheus.WriteToTextfile(flags.metricsPath, a.registry); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ./upload-mapper.yaml)")
	cmd.PersistentFlags().StringVar(&flags.schemaPath, "schema", "", "Schema description file (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&flags.synonymsPath, "synonyms", "", "Extra header synonyms file (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&flags.metricsPath, "metrics", "", "Write automapper metrics to this file on exit")

	cmd.AddCommand(newAutomapCmd(&a))
	cmd.AddCommand(newSuggestCmd(&a))
	cmd.AddCommand(newPicklistCmd(&a))
	cmd.AddCommand(newValidateCmd(&a))
	cmd.AddCommand(newPlanCmd(&a))
	cmd.AddCommand(newInspectCmd(&a))

	return cmd
}

func newApp(flags rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	if flags.schemaPath != "" {
		cfg.Schema.Path = flags.schemaPath
	}

	if flags.synonymsPath != "" {
		cfg.Synonyms.Path = flags.synonymsPath
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := logger.New(cfg.Log.Logger())
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	if cfg.Schema.Path == "" {
		return nil, withCode(exitUsage, errors.New("no schema: pass --schema or set schema.path"))
	}

	s, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	synonyms := match.DefaultSynonyms()

	if cfg.Synonyms.Path != "" {
		extra, err := match.LoadSynonymsFile(cfg.Synonyms.Path)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}

		synonyms = synonyms.Merge(extra)
	}

	registry := prometheus.NewRegistry()
	nav := navigator.New(s)

	am := automapper.New(nav,
		automapper.WithConfig(cfg.Automapper.Config()),
		automapper.WithSynonyms(synonyms),
		automapper.WithLogger(log.Named("automapper")),
		automapper.WithMetrics(automapper.NewMetrics(registry)),
	)

	log.Debug("schema loaded",
		zap.String("path", cfg.Schema.Path),
		zap.Int("tables", len(s.Tables)))

	return &app{
		cfg:        cfg,
		logger:     log,
		registry:   registry,
		nav:        nav,
		automapper: am,
		workbench: workbench.New(nav,
			workbench.WithAutomapper(am),
			workbench.WithLogger(log.Named("workbench"))),
	}, nil
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
