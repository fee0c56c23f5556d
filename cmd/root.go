package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lastmile/app"
	"github.com/kilianp07/lastmile/config"
	"github.com/kilianp07/lastmile/infra/logger"
	"github.com/kilianp07/lastmile/pkg/export"
)

var (
	cfgPath    string
	exportPath string
)

var rootCmd = &cobra.Command{
	Use:   "lastmile",
	Short: "Last-mile delivery dispatch simulator",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "write the event log on exit (.csv or .json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if err := svc.Run(ctx); err != nil {
		return err
	}
	if exportPath == "" {
		return nil
	}
	return exportLog(svc, exportPath)
}

func exportLog(svc *app.Service, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.New("main").Errorf("export close: %v", cerr)
		}
	}()
	entries := svc.Scheduler.Snapshot().LogTail
	if strings.HasSuffix(path, ".json") {
		return export.WriteJSON(f, entries)
	}
	return export.WriteCSV(f, entries)
}
