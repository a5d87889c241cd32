package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/internal/config"
	"github.com/powsybl/powsybl-optimizer/loader"
	"github.com/powsybl/powsybl-optimizer/network"
)

const appName = "pvcheck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a CLI whose logger writes to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pvcheck detects incoherent voltage setpoints in transmission networks",
		Long:         `pvcheck estimates the current that would circulate between two voltage-regulated buses given their setpoints and the equivalent impedance between them, and flags the pairs above a threshold.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))

			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML configuration file")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.baselineCommand())

	return root
}

// settings loads the configuration file, if any, and applies the flags the
// user set explicitly on cmd.
func (c *CLI) settings(cmd *cobra.Command, o *diagOptions) (config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		v, err := impedance.ParseVariant(o.variant)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Variant = v
	}
	if flags.Changed("imax") {
		cfg.IMax = o.iMax
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("outlier-method") {
		if err := cfg.Outliers.Method.UnmarshalText([]byte(o.outlierMethod)); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("outlier-threshold") {
		cfg.Outliers.Threshold = o.outlierThreshold
	}

	return cfg, cfg.Validate()
}

// diagOptions holds the flags shared by the diagnostic commands.
type diagOptions struct {
	casePath         string
	physical         bool
	source           int
	variant          string
	iMax             float64
	workers          int
	outlierMethod    string
	outlierThreshold float64
	json             bool
}

func (o *diagOptions) bindCase(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.casePath, "case", "", "TOML network case (required)")
	cmd.Flags().BoolVar(&o.physical, "physical", false, "convert the case to kV and ohm")
	_ = cmd.MarkFlagRequired("case")
}

func (o *diagOptions) bindSource(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.source, "source", 0, "0-based source bus")
}

func (o *diagOptions) bindRule(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.variant, "variant", impedance.VariantDualRatio.String(), "impedance rule")
	cmd.Flags().Float64Var(&o.iMax, "imax", 2.0, "current threshold")
}

// loadNetwork reads and builds the case named by o.
func loadNetwork(ctx context.Context, o *diagOptions) (*network.Network, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	c, err := loader.Load(o.casePath)
	if err != nil {
		return nil, err
	}
	net, err := c.Build(!o.physical, network.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", o.casePath, err)
	}
	prog.done(fmt.Sprintf("Loaded %d buses, %d branches, %d regulated", net.Order(), len(net.Branches()), len(net.Regulated())))
	if islands := net.Islands(); len(islands) > 1 {
		logger.Warn("network is split", "islands", len(islands), "largest", largest(islands))
	}

	return net, nil
}

func largest(islands [][]int) int {
	size := 0
	for _, is := range islands {
		size = max(size, len(is))
	}

	return size
}
