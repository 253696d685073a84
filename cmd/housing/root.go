package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/report"
)

// referenceValue is the known median house value of sampleRow.
const referenceValue = 241400.0

// sampleRow is the block predicted after every run.
var sampleRow = dataset.Row{
	dataset.ColLongitude:        "-122.25",
	dataset.ColLatitude:         "37.84",
	dataset.ColHousingMedianAge: "52",
	dataset.ColTotalRooms:       "3104",
	dataset.ColTotalBedrooms:    "687",
	dataset.ColPopulation:       "1157",
	dataset.ColHouseholds:       "647",
	dataset.ColMedianIncome:     "3.12",
	dataset.ColOceanProximity:   "NEAR BAY",
}

type rootOptions struct {
	configPath string
	dataPath   string
	logLevel   string
	plotPath   string
	importance bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "housing",
		Short: "Train and evaluate a house price regression model",
		Long: `Loads the California housing CSV, holds out a seeded test split,
fits gradient-boosted regression trees on the rest and prints R², RMSE and
one sample prediction.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return train(cmd, cfg, opts.importance)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "TOML file with run settings")
	flags.StringVar(&opts.dataPath, "data", config.DefaultDataPath, "housing CSV file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&opts.plotPath, "plot", "", "write a predicted-vs-actual plot of the test set to this file")
	cmd.Flags().BoolVar(&opts.importance, "importance", false, "print feature importance after the results")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// resolve merges defaults, the config file and explicitly set flags, in
// that order, and installs the logger.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath = o.dataPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("plot") {
		cfg.PlotPath = o.plotPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if err := log.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func train(cmd *cobra.Command, cfg config.Config, importance bool) error {
	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ds, cfg.PipelineOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.PrintMetrics(out, res.Metrics); err != nil {
		return err
	}

	pred, err := res.Pipeline.Predict(sampleRow)
	if err != nil {
		return err
	}
	if err := report.PrintPrediction(out, pred, referenceValue); err != nil {
		return err
	}

	if importance {
		imp, err := res.Pipeline.Model.FeatureImportance()
		if err != nil {
			return err
		}
		if err := report.PrintFeatureImportance(out, res.Pipeline.Encoder.FeatureNames(), imp); err != nil {
			return err
		}
	}

	if cfg.PlotPath != "" {
		predicted, err := res.Pipeline.PredictDataset(res.Split.Test)
		if err != nil {
			return err
		}
		if err := report.PlotPredictions(cfg.PlotPath, res.Split.Test.Targets(), predicted); err != nil {
			return err
		}
		log.GetLoggerWithName("cmd").Info("Plot written", log.PathKey, cfg.PlotPath)
	}
	return nil
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
