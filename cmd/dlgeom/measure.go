package main

import (
	"fmt"
	"strings"

	"digilib-viewer/internal/measure"
	"digilib-viewer/pkg/geometry"

	"github.com/spf13/cobra"
)

func newMeasureCommand() *cobra.Command {
	var (
		size     string
		dpi      float64
		from, to string
		length   float64
		known    string
	)
	cmd := &cobra.Command{
		Use:   "measure <x0,y0> <x1,y1>",
		Short: "Measure the distance between two normalized points",
		Long: `Measure the distance between two normalized points of an image.

The length in --from units is the rectified distance times a factor. Pass
--known with the two points of a reference distance and --length with its
real length to calibrate the factor first.

Examples:
  dlgeom measure --size 4000,3000 --dpi 600 0.1,0.1 0.5,0.4
  dlgeom measure --size 4000,3000 --known 0,0:0.5,0 --length 2 0.1,0.1 0.5,0.4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseFloats(size, 2)
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}
			cal := measure.Calibration{Size: geometry.Size{Width: s[0], Height: s[1]}, DPI: dpi}
			fromUnit, err := measure.LookupUnit(from)
			if err != nil {
				return err
			}
			toUnit, err := measure.LookupUnit(to)
			if err != nil {
				return err
			}
			meter := measure.NewMeter(fromUnit, toUnit)

			if known != "" {
				ref, err := measurePair(known, cal)
				if err != nil {
					return fmt.Errorf("--known: %w", err)
				}
				meter.UpdateLength(ref.Rectified)
				if _, err := meter.UpdateFactor(length); err != nil {
					return err
				}
			}

			p0, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			p1, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			d, err := measure.Measure(p0, p1, cal)
			if err != nil {
				return err
			}
			r := meter.UpdateLength(d.Rectified)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "pixels:    %.2f\n", d.Pixels)
			_, _ = fmt.Fprintf(out, "rectified: %.4f\n", measure.Round(d.Rectified))
			if d.HasMM {
				_, _ = fmt.Fprintf(out, "mm:        %.2f\n", d.MM)
			}
			_, _ = fmt.Fprintf(out, "factor:    %g\n", r.Factor)
			_, _ = fmt.Fprintf(out, "length:    %g %s = %g %s\n", r.Value, r.From.Name, r.Converted, r.To.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&size, "size", "", "image size in pixels as width,height")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "image resolution, 0 if unknown")
	cmd.Flags().StringVar(&from, "from", "m", "unit of the measured length")
	cmd.Flags().StringVar(&to, "to", "cm", "unit to convert to")
	cmd.Flags().StringVar(&known, "known", "", "reference distance as x0,y0:x1,y1")
	cmd.Flags().Float64Var(&length, "length", 1, "length of the reference distance in --from units")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func measurePair(text string, cal measure.Calibration) (measure.Distance, error) {
	a, b, ok := strings.Cut(text, ":")
	if !ok || a == "" || b == "" {
		return measure.Distance{}, fmt.Errorf("%q: want x0,y0:x1,y1", text)
	}
	p0, err := parsePosition(a)
	if err != nil {
		return measure.Distance{}, err
	}
	p1, err := parsePosition(b)
	if err != nil {
		return measure.Distance{}, err
	}
	return measure.Measure(p0, p1, cal)
}
