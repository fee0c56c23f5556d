package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lastmile/config"
	"github.com/kilianp07/lastmile/sim"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Preview the orders the generator would produce",
	RunE:  runOrders,
}

var ordersTicks int

func init() {
	ordersCmd.Flags().IntVar(&ordersTicks, "ticks", 10, "number of ticks to preview")
	rootCmd.AddCommand(ordersCmd)
}

func runOrders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gen, err := sim.NewGenerator(cfg.Generator)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	now := time.Now()
	for i := 0; i < ordersTicks; i++ {
		for _, o := range gen.Poll(now) {
			fmt.Fprintf(cmd.OutOrStdout(), "tick=%d lat=%.4f lon=%.4f volume=%.1f weight=%.1f priority=%s\n",
				i+1, o.Location.Lat, o.Location.Lon, o.Volume, o.Weight, o.Priority)
		}
		now = now.Add(cfg.TickInterval())
	}
	return nil
}
