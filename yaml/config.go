// Package yaml loads telcheck check settings from a YAML file.
//
// Every key is optional; unset keys leave the CLI defaults (or flag values)
// in place. Unknown keys are rejected so that typos do not silently change
// what a check does.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/telcheck"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name searched for when no path is given.
const DefaultConfigFile = ".telcheck.yaml"

// File mirrors the YAML document. Pointer fields distinguish "unset" from
// the zero value.
type File struct {
	URL              string        `yaml:"url"`
	PhoneNumbers     []string      `yaml:"phone_numbers"`
	HomepageOnly     *bool         `yaml:"homepage_only"`
	TopLevelOnly     *bool         `yaml:"top_level_only"`
	RecordEmptyPages *bool         `yaml:"record_empty_pages"`
	Mode             string        `yaml:"mode"`
	Format           string        `yaml:"format"`
	Engine           string        `yaml:"engine"`
	UserAgent        string        `yaml:"user_agent"`
	Block            []string      `yaml:"block"`
	Concurrency      int           `yaml:"concurrency"`
	MaxPages         int           `yaml:"max_pages"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Load reads and decodes the file at path.
// Returns ENOTFOUND if the file does not exist and EINVALID if it cannot be
// decoded or holds invalid values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, telcheck.Errorf(telcheck.ENOTFOUND, "config file %s not found", path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document. An empty document yields an empty File.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, telcheck.Errorf(telcheck.EINVALID, "invalid config: %v", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate returns an error if the file contains invalid values.
func (f *File) Validate() error {
	if f.Concurrency < 0 {
		return telcheck.Errorf(telcheck.EINVALID, "concurrency must not be negative")
	}
	if f.MaxPages < 0 {
		return telcheck.Errorf(telcheck.EINVALID, "max_pages must not be negative")
	}
	if f.Timeout < 0 {
		return telcheck.Errorf(telcheck.EINVALID, "timeout must not be negative")
	}
	return nil
}

// Blocklist returns the default blocklist extended with the file's entries.
func (f *File) Blocklist() telcheck.Blocklist {
	b := telcheck.DefaultBlocklist()
	return append(b, f.Block...)
}

// FindFile returns path if it is set, otherwise the first DefaultConfigFile
// found in the working directory or the home directory. It returns "" when
// there is nothing to load.
func FindFile(path string) string {
	if path != "" {
		return path
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
