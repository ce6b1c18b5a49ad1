package config

import (
	"bytes"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// FromYamlFile decodes the YAML document at path into out. Keys unknown to
// out are rejected so that typos do not silently fall back to defaults.
func FromYamlFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return FromYaml(data, out)
}

func FromYaml(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		// Empty document, keep the defaults.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	return nil
}
