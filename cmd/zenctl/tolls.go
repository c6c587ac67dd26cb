package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"financaszen/internal/core"
	"financaszen/internal/tolls"
)

func newTollsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tolls",
		Short: "Road toll plazas and route estimates",
	}
	cmd.AddCommand(newPlazasCmd(), newEstimateCmd())
	return cmd
}

func newPlazasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plazas",
		Short: "List the known toll plazas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			est, err := tolls.Default()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PLAZA\tHIGHWAY\tFEE")
			for _, p := range est.Plazas() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Highway, p.Fee.Format())
			}
			return tw.Flush()
		},
	}
}

// parsePoint reads "lat,lng".
func parsePoint(s string) (tolls.Point, error) {
	latS, lngS, ok := strings.Cut(s, ",")
	if !ok {
		return tolls.Point{}, fmt.Errorf("point %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return tolls.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return tolls.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	if !core.ValidCoordinates(lat, lng) {
		return tolls.Point{}, fmt.Errorf("point %q: %w", s, core.ErrInvalidCoordinates)
	}
	return tolls.Point{Lat: lat, Lng: lng}, nil
}

func newEstimateCmd() *cobra.Command {
	var points []string
	var km float64
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate tolls for a route or a distance",
		Example: "  zenctl tolls estimate --point -23.55,-46.63 --point -22.90,-43.17\n" +
			"  zenctl tolls estimate --km 430",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var e tolls.Estimate
			if len(points) >= 2 {
				route := make([]tolls.Point, 0, len(points))
				for _, s := range points {
					p, err := parsePoint(s)
					if err != nil {
						return err
					}
					route = append(route, p)
				}
				est, err := tolls.Default()
				if err != nil {
					return err
				}
				e = est.EstimateRoute(route)
			} else {
				if err := tolls.ValidDistance(km); err != nil {
					return err
				}
				e = tolls.EstimateByDistance(km)
			}

			out := cmd.OutOrStdout()
			for _, p := range e.Plazas {
				fmt.Fprintf(out, "  %s (%s): %s\n", p.Name, p.Highway, p.Fee.Format())
			}
			if e.Fallback {
				fmt.Fprintln(out, "No plaza matched; flat rate per 100 km applied.")
			}
			fmt.Fprintf(out, "Distance: %.1f km\nTotal:    %s\n", e.DistanceKm, e.Total.Format())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&points, "point", nil, "Route point as lat,lng (repeat, in order)")
	cmd.Flags().Float64Var(&km, "km", 0, "Distance in km when no route is given")
	return cmd
}
