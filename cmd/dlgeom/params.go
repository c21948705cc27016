package main

import (
	"fmt"
	"strings"

	"digilib-viewer/internal/params"
	"digilib-viewer/internal/regions"

	"github.com/spf13/cobra"
)

func newParamsCommand() *cobra.Command {
	var canonical bool
	cmd := &cobra.Command{
		Use:   "params <query>",
		Short: "Check and normalize view parameters",
		Long: `Parse a view query string, clip the zoom area to the page and print the
result, or with --canonical the normalized query string.

Examples:
  dlgeom params 'fn=books/page&wx=0.25&wy=0.25&ww=0.5&wh=0.5'
  dlgeom params --canonical 'ww=2&rg=0.1/0.1/0.2/0.2'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params.Parse(args[0])
			if err != nil {
				return err
			}
			if _, err := regions.UnpackRG(p.Rg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if canonical {
				_, _ = fmt.Fprintln(out, p.Encode())
				return nil
			}
			_, _ = fmt.Fprintf(out, "page:    %s #%d\n", p.Fn, p.Pn)
			_, _ = fmt.Fprintf(out, "area:    %s\n", regions.PackCoords(p.Area, ","))
			if p.Dw > 0 || p.Dh > 0 {
				_, _ = fmt.Fprintf(out, "size:    %dx%d\n", p.Dw, p.Dh)
			}
			if p.Rg != "" {
				_, _ = fmt.Fprintf(out, "regions: %s\n", p.Rg)
			}
			if len(p.Mo) > 0 {
				_, _ = fmt.Fprintf(out, "modes:   %s\n", strings.Join(p.Mo, ","))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&canonical, "canonical", false, "print the normalized query string")
	return cmd
}
