package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/powsybl/powsybl-optimizer/coherence"
	"github.com/powsybl/powsybl-optimizer/outliers"
)

func (c *CLI) sweepCommand() *cobra.Command {
	var opts diagOptions

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Check setpoint coherence from every regulated bus",
		Long: `Sweep runs check from every regulated bus in parallel, then ranks the
sources by their largest current and lists the outlying ones as suspects.`,
		Example: `  pvcheck sweep --case grid.toml --workers 8
  pvcheck sweep --case grid.toml --outlier-method iqr --outlier-threshold 0.25 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.settings(cmd, &opts)
			if err != nil {
				return err
			}
			net, err := loadNetwork(cmd.Context(), &opts)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			res, err := coherence.Sweep(cmd.Context(), net, cfg.Variant.Rule(), cfg.IMax,
				coherence.WithLogger(logger),
				coherence.WithSearchOptions(cfg.SearchOptions()...),
				coherence.WithWorkers(cfg.Workers))
			if err != nil {
				return err
			}
			suspects, err := res.Suspects(cfg.Outliers.Method, cfg.Outliers.Threshold)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), newSweepJSON(res, suspects))
			}
			printSweep(cmd.OutOrStdout(), res, suspects, cfg.Outliers.Method)

			return nil
		},
	}

	opts.bindCase(cmd)
	opts.bindRule(cmd)
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker pool size (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.outlierMethod, "outlier-method", outliers.MethodZScore.String(), "suspect detector: zscore or iqr")
	cmd.Flags().Float64Var(&opts.outlierThreshold, "outlier-threshold", 3, "z-score threshold, or IQR quantile")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the sweep as JSON")

	return cmd
}

func printSweep(w io.Writer, res *coherence.SweepResult, suspects []coherence.Suspect, m outliers.Method) {
	printTitle(w, "Sweep %s", res.RunID)
	printKeyValue(w, "rule", res.Rule)
	printKeyValue(w, "sources", fmt.Sprintf("%d checked, %d failed", len(res.Reports), len(res.Failures)))
	printKeyValue(w, "elapsed", res.Elapsed.String())

	for _, f := range res.Failures {
		printError(w, "bus %d: %v", f.Source, f.Err)
	}

	warnings := res.Warnings()
	if len(warnings) == 0 {
		printSuccess(w, "setpoints coherent")
	} else {
		printWarning(w, "%d incoherent pairs", len(warnings))
		for _, warn := range warnings {
			printDetail(w, "%s", warn.String())
		}
	}

	if len(suspects) == 0 {
		printInfo(w, "no suspect source (%s)", m)
		return
	}
	printInfo(w, "suspect sources (%s)", m)
	for _, s := range suspects {
		printDetail(w, "bus %d: %.4f towards bus %d", s.Source, s.MaxCurrent, s.Vertex)
	}
}
