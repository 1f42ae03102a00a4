// cmd/worker-manager/main.go
package main

import (
	"os"

	"chatnil-workers/internal/common/config"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "worker-manager",
		Short: "ChatNIL scoring workers, match stream and schedulers",
		Long: `worker-manager runs the Zeebe job workers for FMV, compliance and match
scoring, the admin HTTP surface with the match notification stream, and the
stale score sweep.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to ./configs/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTasksCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
