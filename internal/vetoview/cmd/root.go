package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/mapveto-backend/internal/config"
	"github.com/DoyleJ11/mapveto-backend/internal/i18n"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
	"github.com/DoyleJ11/mapveto-backend/internal/vetosource"
)

// env is shared by all subcommands and filled in PersistentPreRunE.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	source  *vetosource.Client
	catalog *i18n.Catalog
	lang    string
	out     io.Writer
}

func Root() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "vetoview",
		Short: "Inspect the map veto of a running server",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}

	root.PersistentFlags().String("server", "", "Veto server base URL (default http://$MAPVETO_ADDR)")
	root.PersistentFlags().String("state-dir", "", "Directory holding the vetoresult.json cache")
	root.PersistentFlags().String("lang", "", "Output language, de or en")
	root.PersistentFlags().BoolP("trace", "t", false, "Show debug logging")

	root.AddCommand(State(e))
	root.AddCommand(Played(e))
	root.AddCommand(Winner(e))
	root.AddCommand(Lang(e))

	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flag("trace").Changed {
		cfg.LogLevel = zapcore.DebugLevel
	} else {
		cfg.LogLevel = zapcore.WarnLevel
	}
	cfg.Dev = true

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = "http://" + cfg.HTTPAddr
	}
	if dir, _ := cmd.Flags().GetString("state-dir"); dir != "" {
		cfg.StateDir = dir
	}

	catalog, err := i18n.New(cfg.DefaultLanguage, logger)
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	if lang != "" && !catalog.Supports(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}

	e.cfg = cfg
	e.logger = logger
	e.catalog = catalog
	e.lang = catalog.Match(lang)
	e.out = cmd.OutOrStdout()
	e.source = vetosource.New(
		vetosource.WithBaseURL(server),
		vetosource.WithCache(storage.NewFileStore(cfg.StateDir)),
		vetosource.WithLogger(logger.Named("source")),
	)
	return nil
}
