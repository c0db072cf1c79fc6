package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/mentoraid/dataset"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
	"github.com/YuminosukeSato/mentoraid/preprocessing"
	"github.com/YuminosukeSato/mentoraid/tuning"
)

func newTuneCmd(a *app) *cobra.Command {
	var flags struct {
		output  string
		noSave  bool
		inFolds bool
	}
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Compare default and tuned models of every family",
		Long: "tune loads the student records, prepares them and runs the default vs tuned\n" +
			"comparison for every model family, then the neural architecture search.\n" +
			"Results, tuned models, feature names and the label encoder are written to the output directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tc := a.cfg.Tuning
			if cmd.Flags().Changed("output") {
				tc.OutputDir = flags.output
			}
			if flags.noSave {
				tc.SaveModels = false
			}
			if flags.inFolds {
				tc.ResampleInsideFolds = true
			}

			start := time.Now()
			frame, err := dataset.LoadCSV(a.cfg.Dataset.Path, dataset.WithDelimiter(a.cfg.DelimiterRune()))
			if err != nil {
				return err
			}
			a.logger.Info("Dataset loaded",
				log.PathKey, a.cfg.Dataset.Path,
				log.SamplesKey, frame.NRows(),
				log.FeaturesKey, len(frame.Columns()),
			)
			prepared, err := preprocessing.Prepare(frame, a.cfg.PipelineConfig(), a.logger)
			if err != nil {
				return err
			}

			runner := tuning.NewRunner(tc,
				tuning.WithFamilies(a.cfg.Families()),
				tuning.WithLogger(a.logger),
				tuning.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := runner.Run(cmd.Context(), prepared); err != nil {
				return err
			}
			a.logger.Info("Tuning complete",
				log.RunIDKey, runner.RunID(),
				log.DurationSecondsKey, time.Since(start).Seconds(),
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output directory for results and tuned models")
	f.BoolVar(&flags.noSave, "no-save", false, "Do not write tuned model files")
	f.BoolVar(&flags.inFolds, "resample-inside-folds", false, "Oversample each training fold instead of the whole data set")
	return cmd
}
