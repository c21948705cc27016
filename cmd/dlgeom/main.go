// Command dlgeom runs the viewer's geometry from the command line: viewport
// transforms, region lists, measurements and view parameters.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/version"
	"digilib-viewer/pkg/geometry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type globals struct {
	logLevel string
	logger   *zap.Logger
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "dlgeom",
		Short:         "Digilib viewer geometry tools",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(g.logLevel, false)
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTransformCommand(false))
	cmd.AddCommand(newTransformCommand(true))
	cmd.AddCommand(newRegionsCommand(g))
	cmd.AddCommand(newMeasureCommand())
	cmd.AddCommand(newParamsCommand())
	cmd.AddCommand(newRenderCommand(g))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "dlgeom "+version.String())
		},
	}
}

// parseFloats reads n comma separated numbers.
func parseFloats(text string, n int) ([]float64, error) {
	parts := strings.Split(text, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma separated numbers", text, n)
	}
	vs := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", text, err)
		}
		vs[i] = v
	}
	return vs, nil
}

func parseRect(text string) (geometry.Rectangle, error) {
	vs, err := parseFloats(text, 4)
	if err != nil {
		return geometry.Rectangle{}, err
	}
	return geometry.NewRectangle(vs[0], vs[1], vs[2], vs[3])
}

func parsePosition(text string) (geometry.Position, error) {
	vs, err := parseFloats(text, 2)
	if err != nil {
		return geometry.Position{}, err
	}
	return geometry.NewPosition(vs[0], vs[1])
}

func formatRect(r geometry.Rectangle) string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.Width, r.Height)
}

func formatPosition(p geometry.Position) string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}
