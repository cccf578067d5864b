package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sensornode-go/model"
	"sensornode-go/platform"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the composition as built",
	Long: `Build the composition and print the document its configuration visitor
produces. Defaults filled in by the sensor and communicator classes show
up explicitly, so the output is what the node actually runs with.

Example:
  shinode dump --device pico`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	addSourceFlags(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
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

	doc, err := model.Serialize(a.hw)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, doc, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(cmd.OutOrStdout())
	return err
}
