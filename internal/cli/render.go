package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/powsybl/powsybl-optimizer/coherence"
	"github.com/powsybl/powsybl-optimizer/render"
)

func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts diagOptions
		out  string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a case annotated with a coherence check",
		Long: `Render writes the network as Graphviz DOT, or as SVG when the output file
ends in .svg. The source bus is filled and flagged buses are drawn in red.
A negative source draws the plain network.`,
		Example: `  pvcheck render --case grid.toml --source 4 --out grid.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".dot" && ext != ".svg" {
				return fmt.Errorf("unsupported output %q: want .dot or .svg", out)
			}
			cfg, err := c.settings(cmd, &opts)
			if err != nil {
				return err
			}
			net, err := loadNetwork(cmd.Context(), &opts)
			if err != nil {
				return err
			}

			var rep *coherence.Report
			if opts.source >= 0 {
				rep, err = coherence.Check(net, opts.source, cfg.Variant.Rule(), cfg.IMax,
					coherence.WithLogger(loggerFromContext(cmd.Context())),
					coherence.WithSearchOptions(cfg.SearchOptions()...))
				if err != nil {
					return err
				}
			}

			data := []byte(render.ToDOT(net, rep))
			if ext == ".svg" {
				if data, err = render.RenderSVG(cmd.Context(), string(data)); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			printSuccess(cmd.OutOrStdout(), "Rendered")
			printFile(cmd.OutOrStdout(), out)

			return nil
		},
	}

	opts.bindCase(cmd)
	opts.bindSource(cmd)
	opts.bindRule(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "network.dot", "output file (.dot or .svg)")

	return cmd
}
