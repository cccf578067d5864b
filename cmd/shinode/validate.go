package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"sensornode-go/platform"
	"sensornode-go/services/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a composition",
	Long: `Check a composition against the document schema and build it, without
touching any device or starting the loop.

Exit codes:
  0 - Composition is valid
  1 - Composition is invalid (error details printed to stderr)

Example:
  shinode validate --composition node.json
  shinode validate -c settings.yaml`,
	RunE: runValidate,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the embedded compositions",
	Run: func(cmd *cobra.Command, args []string) {
		ids := config.Devices()
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, devicesCmd)
	addSourceFlags(validateCmd)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	text, err := s.CompositionText()
	if err != nil {
		return err
	}
	host, err := platform.NewHost()
	if err != nil {
		return err
	}
	buses, _ := platform.DefaultI2CBuses()
	a, err := assemble(text, quietLogger(), host, buses)
	if err != nil {
		return err
	}
	defer a.release()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Composition is valid!\n")
	fmt.Fprintf(out, "  Hardware:      %s\n", a.hw.Name())
	fmt.Fprintf(out, "  Groups:        %d\n", len(a.hw.Groups()))
	fmt.Fprintf(out, "  Sensors:       %d\n", len(a.hw.Sensors()))
	fmt.Fprintf(out, "  Communicators: %d\n", len(a.hw.Communicators()))
	return nil
}
