// Package config reads the mycc.yaml project file.
package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in the project directory.
const FileName = "mycc.yaml"

type Config struct {
	Entry    string `yaml:"entry"`     // source file compiled by build and run
	Prune    bool   `yaml:"prune"`     // drop unreachable functions
	MaxSteps int    `yaml:"max_steps"` // simulator step limit, 0 for the default
	Listing  string `yaml:"listing"`   // where build writes the listing
	Input    string `yaml:"input"`     // bytes fed to in()
}

func Default() Config {
	return Config{
		Entry:    "main.mc",
		Prune:    true,
		MaxSteps: 1_000_000,
		Listing:  "main.asm",
	}
}

// Load reads mycc.yaml from dir. A missing file gives the defaults; keys
// absent from the file keep their default values.
func Load(dir string) (Config, error) {
	conf := Default()

	file, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return conf, nil
	}
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil {
		if errors.Is(err, io.EOF) {
			return conf, nil
		}
		return Config{}, err
	}
	return conf, nil
}

// Save writes c to dir/mycc.yaml. An existing file is kept unless overwrite
// is set.
func (c Config) Save(dir string, overwrite bool) error {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return os.ErrExist
	}

	yml, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, yml, 0644)
}
