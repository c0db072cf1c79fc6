package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/mentoraid/audit"
	"github.com/YuminosukeSato/mentoraid/pkg/log"
)

func newAuditCmd(a *app) *cobra.Command {
	var flags struct {
		model    string
		features string
	}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare a saved model's feature list with the saved feature names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelPath := a.cfg.Audit.ModelPath
			if flags.model != "" {
				modelPath = flags.model
			}
			featuresPath := a.cfg.Audit.FeaturesPath
			if flags.features != "" {
				featuresPath = flags.features
			}
			rep, err := audit.Run(modelPath, featuresPath)
			if err != nil {
				return err
			}
			if rep.WidthMismatch() {
				a.logger.Warn("Artifact feature names disagree with fitted estimator",
					log.PathKey, modelPath,
					log.FeaturesKey, len(rep.ModelFeatures),
					"fitted_features", rep.FittedFeatures,
				)
			}
			rep.Print(cmd.OutOrStdout())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.model, "model", "", "Saved model file (default from config)")
	f.StringVar(&flags.features, "features", "", "Feature name list (default from config)")
	return cmd
}
