package main

import (
	"fmt"
	"strings"

	"digilib-viewer/pkg/geometry"

	"github.com/spf13/cobra"
)

func newTransformCommand(inverse bool) *cobra.Command {
	var dest, area string

	use, short := "transform", "Map normalized coordinates to screen coordinates"
	if inverse {
		use, short = "invtransform", "Map screen coordinates to normalized coordinates"
	}
	cmd := &cobra.Command{
		Use:   use + " <x,y | x,y,w,h>...",
		Short: short,
		Long: short + `.

The screen rectangle the zoom area is drawn into is given with --dest, the
zoom area with --area. Each argument is a position or a rectangle.

Examples:
  dlgeom transform --dest 0,0,800,600 --area 0.25,0.25,0.5,0.5 0.5,0.5
  dlgeom invtransform --dest 0,0,800,600 100,100,200,150`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseRect(dest)
			if err != nil {
				return fmt.Errorf("--dest: %w", err)
			}
			a, err := parseRect(area)
			if err != nil {
				return fmt.Errorf("--area: %w", err)
			}
			vt, err := geometry.NewViewportTransform(d, a)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				line, err := transformArg(vt, arg, inverse)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "screen rectangle x,y,w,h")
	cmd.Flags().StringVar(&area, "area", "0,0,1,1", "zoom area x,y,w,h")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func transformArg(vt geometry.ViewportTransform, arg string, inverse bool) (string, error) {
	if strings.Count(arg, ",") == 1 {
		p, err := parsePosition(arg)
		if err != nil {
			return "", err
		}
		if inverse {
			return formatPosition(vt.InvTransformPosition(p)), nil
		}
		return formatPosition(vt.TransformPosition(p)), nil
	}
	r, err := parseRect(arg)
	if err != nil {
		return "", err
	}
	if inverse {
		return formatRect(vt.InvTransform(r)), nil
	}
	return formatRect(vt.Transform(r)), nil
}
