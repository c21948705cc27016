package main

import (
	"fmt"
	"os"
	"strings"

	"digilib-viewer/internal/regions"
	"digilib-viewer/pkg/geometry"

	"github.com/spf13/cobra"
)

func newRegionsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Read, pack and export region lists",
	}
	cmd.AddCommand(newRegionsParseCommand())
	cmd.AddCommand(newRegionsPackCommand())
	cmd.AddCommand(newRegionsExportCommand(g))
	return cmd
}

func newRegionsParseCommand() *cobra.Command {
	var width float64
	cmd := &cobra.Command{
		Use:   "parse <rg | coords>",
		Short: "Print the regions of an rg value, or the region of coordinate text",
		Long: `Print one region per line as x,y,w,h.

An argument containing "/" is read as an rg parameter value; anything else
as coordinate text, where a single position becomes a small square.

Examples:
  dlgeom regions parse 0.1/0.1/0.2/0.2,0.5/0.5/0.1/0.1
  dlgeom regions parse "x=0.3 y=0.4"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rects, err := parseRegionArg(args[0], width)
			if err != nil {
				return err
			}
			for _, r := range rects {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), regions.PackCoords(r, ","))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", regions.DefaultWidth, "size of regions given as a single position")
	return cmd
}

func parseRegionArg(arg string, width float64) ([]geometry.Rectangle, error) {
	if strings.Contains(arg, "/") {
		return regions.UnpackRG(arg)
	}
	r, err := regions.ParseCoords(arg, width)
	if err != nil {
		return nil, err
	}
	return []geometry.Rectangle{r}, nil
}

func newRegionsPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <x,y,w,h>...",
		Short: "Pack rectangles into an rg parameter value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rects := make([]geometry.Rectangle, 0, len(args))
			for _, arg := range args {
				r, err := parseRect(arg)
				if err != nil {
					return err
				}
				rects = append(rects, r)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), regions.PackRG(rects))
			return nil
		},
	}
}

func newRegionsExportCommand(g *globals) *cobra.Command {
	var (
		format   string
		rg       string
		htmlPath string
		match    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export regions from an rg value and region markup",
		Long: `Export regions as html, svg, csv or digilib coordinates.

Examples:
  dlgeom regions export --rg 0.1/0.1/0.2/0.2 --format html
  dlgeom regions export --html page.html --match '^Fig' --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := regions.ParseFormat(format)
			if err != nil {
				return err
			}
			store := regions.NewStore(g.logger)
			if err := store.LoadRG(rg); err != nil {
				return err
			}
			if htmlPath != "" {
				file, err := os.Open(htmlPath)
				if err != nil {
					return err
				}
				_, skipped, err := store.LoadHTML(file, regions.DefaultWidth)
				file.Close()
				if err != nil {
					return err
				}
				for _, s := range skipped {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped region with coords %q\n", s)
				}
			}

			list := store.Regions()
			if match != "" {
				if list, err = store.Match(match); err != nil {
					return err
				}
			}
			return regions.Export(cmd.OutOrStdout(), list, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "digilib", "output format: html, svg, csv or digilib")
	cmd.Flags().StringVar(&rg, "rg", "", "user regions as an rg parameter value")
	cmd.Flags().StringVar(&htmlPath, "html", "", "page with region markup")
	cmd.Flags().StringVar(&match, "match", "", "only markup regions whose title matches this expression")
	return cmd
}
