package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/securecode-ai/securecode/cmd/server"
	"github.com/securecode-ai/securecode/cmd/version"
	"github.com/securecode-ai/securecode/cmd/worker"
	"github.com/securecode-ai/securecode/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "securecode [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "SecureCode scans submitted source code for vulnerabilities.",
		Long: `SecureCode is a code analysis backend combining deterministic pattern rules
	with a pretrained classifier. It serves synchronous analysis over HTTP, queues
	requests on a durable stream for batch processing, and pushes results to live
	websocket sessions.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(server.NewServerCmd())
	rootCmd.AddCommand(worker.NewWorkerCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		if _, statErr := os.Stat("config.yml"); statErr == nil {
			cfgFile = "config.yml"
		}
	}

	if cfgFile == "" {
		AppConfig = config.Default()
	} else {
		AppConfig, err = config.NewConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config %q failed: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}

	server.Init(AppConfig)
	worker.Init(AppConfig)
	version.Init(AppConfig)
}
