package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/edge10/backend/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on the configured cron schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.New(a.log)
		if err := sched.AddJob(a.cfg.Pipeline.Schedule, scheduler.NewScanJob(a.pipe, a.log)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		a.log.WithField("signal", sig.String()).Info("Stopping scheduler")
		return nil
	},
}
