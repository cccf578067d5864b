// Package main is the entry point for the shinode CLI, which runs a sensor
// node on a host machine against emulated I2C devices.
//
// Usage:
//
//	shinode run -c settings.yaml     # Run the node
//	shinode validate -c settings.yaml # Validate the composition
//	shinode dump --device host-demo  # Print the composition as built
//	shinode devices                  # List embedded compositions
//	shinode version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, e.g. -X main.version=1.0.0.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "shinode",
	Short: "A sensor node runtime for hosts",
	Long: `shinode builds a sensor node from a JSON composition document and runs
its read, status and watchdog loop.

The composition comes either from a file or from one of the documents
embedded per device id. Readings are forwarded to the communicators the
composition declares; on a host these include a log, a Prometheus
exporter and a websocket feed served on the settings' HTTP address.

Example settings:
  device: host-demo
  status_interval: 60s
  tick_interval: 1s
  log:
    level: debug
  http:
    listen: ":9102"`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "shinode %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
