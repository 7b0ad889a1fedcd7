package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
)

type outputFlags struct {
	json bool
	yaml bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&f.yaml, "yaml", false, "Output as YAML")
}

func (f *outputFlags) format() (outputFormat, error) {
	switch {
	case f.json && f.yaml:
		return formatText, errors.New("--json and --yaml are mutually exclusive")
	case f.json:
		return formatJSON, nil
	case f.yaml:
		return formatYAML, nil
	default:
		return formatText, nil
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// writeStructured emits v in the requested machine format. It reports false
// for formatText so the caller renders its human view.
func writeStructured(cmd *cobra.Command, format outputFormat, v any) (bool, error) {
	switch format {
	case formatJSON:
		return true, writeJSON(cmd, v)
	case formatYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
