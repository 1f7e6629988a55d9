// Command otpterm runs the phone verification surfaces in a terminal: the
// global modal driven by the coordinator, or the self-contained inline flow.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "otpterm",
	Short:         "Phone verification in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config/config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "otpterm.log", "file receiving JSON logs, the terminal is taken by the UI")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(newModalCmd(), newInlineCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
