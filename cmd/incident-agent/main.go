package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "incident-agent",
	Short: "Incident report processing agent",
	Long: `incident-agent processes raw incident-report text: it sanitizes the
input, translates it to English in a quality-gated loop, classifies the
event, and dispatches alert and storage actions for relevant incidents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file (default: .incident-agent/config.yaml if present)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
