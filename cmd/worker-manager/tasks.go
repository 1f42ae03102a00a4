// cmd/worker-manager/tasks.go
package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"chatnil-workers/internal/common/config"
	scoredeal "chatnil-workers/internal/workers/compliance/score-deal"
	summarizedeals "chatnil-workers/internal/workers/compliance/summarize-deals"
	queryscoringdata "chatnil-workers/internal/workers/data-access/query-scoring-data"
	calculatefmv "chatnil-workers/internal/workers/fmv/calculate-fmv"
	recalculatefmv "chatnil-workers/internal/workers/fmv/recalculate-fmv"
	calculatematchscore "chatnil-workers/internal/workers/matching/calculate-match-score"
	sendnotification "chatnil-workers/internal/workers/notifications/send-notification"
	"chatnil-workers/pkg/registry"

	"github.com/spf13/cobra"
)

const defaultRegistryPath = "configs/activity-registry.json"

var registryPath = defaultRegistryPath

// workerTaskTypes is every job type serve can start.
var workerTaskTypes = []string{
	sendnotification.TaskType,
	calculatefmv.TaskType,
	recalculatefmv.TaskType,
	scoredeal.TaskType,
	summarizedeals.TaskType,
	calculatematchscore.TaskType,
	queryscoringdata.TaskType,
}

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the job types in the activity registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			return printTasks(cmd.OutOrStdout(), reg, cfg)
		},
	}
	cmd.PersistentFlags().StringVar(&registryPath, "registry", defaultRegistryPath, "path to the activity registry")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the activity registry covers every worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return err
			}
			if err := checkRegistry(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activity registry %s OK (%d activities)\n", reg.Version, len(reg.Activities))
			return nil
		},
	})
	return cmd
}

func printTasks(w io.Writer, reg *registry.ActivityRegistry, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tSTATUS\tENABLED\tTIMEOUT")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
			a.TaskType, a.Category, a.ImplementationStatus, config.IsWorkerEnabled(cfg, a.TaskType), a.Timeout)
	}
	return tw.Flush()
}

// checkRegistry joins every registry problem into one error.
func checkRegistry(reg *registry.ActivityRegistry) error {
	problems := reg.Validate()
	for _, tt := range reg.Missing(workerTaskTypes) {
		problems = append(problems, fmt.Errorf("no activity for task type %q", tt))
	}
	return errors.Join(problems...)
}
