package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reoring/wirejson/schema"
	"github.com/reoring/wirejson/schema/gosrc"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = ".wirejson.yml"

// SourceConfig selects where a schema comes from.
type SourceConfig struct {
	SchemaPath string
	SourceDir  string
	Package    string
	EmitTypes  bool
	ConfigPath string
}

type fileConfig struct {
	Wirejson struct {
		Schema    string `yaml:"schema"`
		Dir       string `yaml:"dir"`
		Out       string `yaml:"out"`
		Filename  string `yaml:"filename"`
		Package   string `yaml:"package"`
		EmitTypes bool   `yaml:"emit_types"`
	} `yaml:"wirejson"`
}

// readConfigFile loads the config file. A missing default file is not an
// error; a missing explicit one is.
func readConfigFile(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// merge applies config file values where flags were left unset.
func (c *SourceConfig) merge(fc *fileConfig) {
	if c.SchemaPath == "" && c.SourceDir == "" {
		c.SchemaPath = fc.Wirejson.Schema
		c.SourceDir = fc.Wirejson.Dir
	}
	if c.Package == "" {
		c.Package = fc.Wirejson.Package
	}
	if !c.EmitTypes {
		c.EmitTypes = fc.Wirejson.EmitTypes
	}
}

// load reads the schema from a schema file or a Go source directory.
func (c *SourceConfig) load() (*schema.File, error) {
	var (
		f   *schema.File
		err error
	)
	switch {
	case c.SchemaPath != "" && c.SourceDir != "":
		return nil, errors.New("--schema and --dir are mutually exclusive")
	case c.SchemaPath != "":
		f, err = schema.LoadFile(c.SchemaPath)
	case c.SourceDir != "":
		f, err = gosrc.ScanDir(c.SourceDir)
	default:
		return nil, errors.New("one of --schema or --dir is required")
	}
	if err != nil {
		return nil, err
	}
	if c.Package != "" {
		f.Package = c.Package
	}
	if c.EmitTypes {
		f.Options.EmitTypes = true
	}
	return f, nil
}

func (c *SourceConfig) source() string {
	if c.SchemaPath != "" {
		return filepath.ToSlash(c.SchemaPath)
	}
	return filepath.ToSlash(c.SourceDir)
}
