package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/weather"
)

func newForecastCmd() *cobra.Command {
	var lat, long float64

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the weather forecast for a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := weatherClient(logging.DefaultLogger(), nil)
			if client == nil {
				return weather.ErrMissingAPIKey
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			days, err := client.Forecast(ctx, lat, long)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), weather.Format(days))
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&long, "long", 0, "Longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("long")

	return cmd
}
