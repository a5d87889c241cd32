package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/powsybl/powsybl-optimizer/coherence"
)

func (c *CLI) checkCommand() *cobra.Command {
	var opts diagOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check setpoint coherence from one source bus",
		Long: `Check runs the impedance search from the source bus and reports every
regulated bus whose setpoint implies a circulating current above the threshold.`,
		Example: `  pvcheck check --case grid.toml --source 4
  pvcheck check --case grid.toml --source 4 --physical --variant single-side-ratio --imax 1.5 --json`,
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
			rep, err := coherence.Check(net, opts.source, cfg.Variant.Rule(), cfg.IMax,
				coherence.WithLogger(logger), coherence.WithSearchOptions(cfg.SearchOptions()...))
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), newReportJSON(rep))
			}
			printReport(cmd.OutOrStdout(), rep, len(net.Regulated()))

			return nil
		},
	}

	opts.bindCase(cmd)
	opts.bindSource(cmd)
	opts.bindRule(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

func printReport(w io.Writer, rep *coherence.Report, regulated int) {
	printTitle(w, "Coherence from bus %d", rep.Source)
	printKeyValue(w, "rule", rep.Rule)
	printKeyValue(w, "threshold", fmt.Sprintf("%g", rep.Threshold))
	if rep.MaxVertex >= 0 {
		printKeyValue(w, "max current", fmt.Sprintf("%s towards bus %d",
			styleNumber.Render(fmt.Sprintf("%.4f", rep.MaxCurrent)), rep.MaxVertex))
	}

	if rep.Coherent() {
		printSuccess(w, "setpoints coherent")
		return
	}
	for _, warn := range rep.Warnings {
		printWarning(w, "%s", warn.String())
	}
	printDetail(w, "%d of %d regulated buses flagged", len(rep.Warnings), regulated)
}
