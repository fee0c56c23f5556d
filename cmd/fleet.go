package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lastmile/config"
	"github.com/kilianp07/lastmile/core/fleet"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured fleet",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := fleet.NewPool(cfg.Fleet.NumVehicles, cfg.Capacity(), cfg.Fleet.MaxTripsPerVehicle, cfg.ReturnDuration(), time.Now())
	if err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	for _, v := range pool.Snapshot() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tvolume=%.0f\tweight=%.0f\tstops=%d\n",
			v.ID, v.Capacity.MaxVolume, v.Capacity.MaxWeight, v.Capacity.MaxStops)
	}
	return nil
}
