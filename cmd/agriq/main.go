package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agriq-org/agriq/composer"
	"github.com/agriq-org/agriq/config"
	"github.com/agriq-org/agriq/dataset"
	"github.com/agriq-org/agriq/engine"
	"github.com/agriq-org/agriq/helpers"
	"github.com/agriq-org/agriq/query"
	"github.com/agriq-org/agriq/taxonomy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agriq",
		Short:         "Answer analytical questions over rainfall and crop production data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newAskCmd())
	return root
}

func newAskCmd() *cobra.Command {
	var (
		cfgPath      string
		rainfallPath string
		cropsPath    string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Parse a free-text question and answer it from the harmonized datasets",
		Example: `  agriq ask "Compare average annual rainfall in Tamil Nadu and Karnataka"
  agriq ask --json "Which district in Punjab has the highest Wheat production?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if rainfallPath != "" {
				cfg.Data.RainfallGridPath = rainfallPath
			}
			if cropsPath != "" {
				cfg.Data.CropTablePath = cropsPath
			}

			log, err := buildLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			c, err := buildComposer(cfg, log)
			if err != nil {
				return err
			}

			ans, err := c.Answer(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(ans, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			printAnswer(cmd, ans)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "agriq.yaml", "path to the config file")
	cmd.Flags().StringVar(&rainfallPath, "rainfall", "", "rainfall grid JSON (overrides config)")
	cmd.Flags().StringVar(&cropsPath, "crops", "", "crop production CSV (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full composed answer as JSON")
	return cmd
}

func buildComposer(cfg *config.Config, log *zap.Logger) (*composer.Composer, error) {
	reg, err := taxonomy.Load()
	if err != nil {
		return nil, err
	}

	var resOpts []taxonomy.Option
	if cfg.Resolver.FuzzyThreshold > 0 {
		resOpts = append(resOpts, taxonomy.WithThreshold(cfg.Resolver.FuzzyThreshold))
	}
	res := taxonomy.NewResolver(reg, resOpts...)

	store := dataset.NewStore(
		helpers.RainfallFileLoader(cfg.Data.RainfallGridPath),
		helpers.CropFileLoader(cfg.Data.CropTablePath),
		res,
		dataset.WithLogger(log),
	)

	var parserOpts []query.Option
	parserOpts = append(parserOpts, query.WithLogger(log))
	if cfg.Engine.DefaultTopN > 0 {
		parserOpts = append(parserOpts, query.WithDefaultTopN(cfg.Engine.DefaultTopN))
	}

	engOpts := []engine.Option{engine.WithLogger(log)}
	if cfg.Engine.TrendTolerance > 0 {
		engOpts = append(engOpts, engine.WithTrendTolerance(cfg.Engine.TrendTolerance))
	}

	return composer.New(
		query.New(res, parserOpts...),
		engine.New(store, engOpts...),
		composer.WithLogger(log),
	), nil
}

func printAnswer(cmd *cobra.Command, ans *composer.ComposedAnswer) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status: %s\n", ans.Status)
	for i, frag := range ans.Fragments {
		if len(ans.Fragments) > 1 {
			fmt.Fprintf(out, "\n[%d] %s\n", i+1, frag.Question)
		}
		if frag.OK {
			fmt.Fprintln(out, frag.Answer)
		} else {
			fmt.Fprintf(out, "could not answer (%s): %s\n", frag.Failure, frag.Answer)
		}
		for _, c := range frag.Citations {
			fmt.Fprintf(out, "  source: %s, %s, %s, %s\n", c.Dataset, c.Metric, c.Region, c.Years)
		}
	}
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}
