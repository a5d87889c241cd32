package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/powsybl/powsybl-optimizer/dijkstra"
)

func (c *CLI) baselineCommand() *cobra.Command {
	var opts diagOptions

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Shortest paths on branch reactances",
		Long: `Baseline runs a plain Dijkstra from the source bus with branch reactance
as the weight, ignoring transformer ratios. It is the reference the
impedance rules generalize.`,
		Example: `  pvcheck baseline --case grid.toml --source 0`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			net, err := loadNetwork(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			dist, prev, err := dijkstra.Dijkstra(net, dijkstra.Source(opts.source), dijkstra.WithReturnPath())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTitle(w, "Reactance distances from bus %d", opts.source)
			for v, d := range dist {
				if math.IsInf(d, 1) {
					printKeyValue(w, fmt.Sprintf("bus %d", v), styleDim.Render("unreachable"))
					continue
				}
				printKeyValue(w, fmt.Sprintf("bus %d", v),
					styleNumber.Render(strconv.FormatFloat(d, 'g', 6, 64))+"  "+styleDim.Render(pathString(prev, v)))
			}

			return nil
		},
	}

	opts.bindCase(cmd)
	opts.bindSource(cmd)

	return cmd
}

// pathString walks prev back from v and formats the path source-first.
func pathString(prev []int, v int) string {
	var path []string
	for u := v; u != -1; u = prev[u] {
		path = append(path, strconv.Itoa(u))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return strings.Join(path, " "+iconArrow+" ")
}
