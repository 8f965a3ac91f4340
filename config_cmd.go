package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# voice name or ISO 639-2/3166 code: en-US, en-GB, de-DE, es-ES, fr-FR, it-IT
voice: "en-GB"
# synthesis engine: pico, exec or mock
engine: "pico"

lingware:
  # use this directory instead of searching the paths below
  # dir: "~/pico/lang"
  paths:
    - "./lang"
    - "/usr/share/pico/lang"

# prosody factors, unset means unchanged
prosody:
  # speed: 1.0   # 0.2 to 5.0
  # pitch: 1.0   # 0.5 to 2.0
  # volume: 1.0  # 0.0 to 5.0

output:
  # auto-numbered files (-w): <dir>/<prefix><number><suffix>
  dir: "."
  prefix: "nanotts-output-"
  suffix: ".wav"
  zero_pad: 4
  # play through the speakers by default (-m turns it off)
  play: false
  # write raw PCM to stdout by default
  stdout: false

# engine transfer settings
pipeline:
  burst_bytes: 128
  buffer_bytes: 256
  max_push_bytes: 32767
  max_stalls: 64

# external command backend (engine: exec): reads text on stdin and writes
# raw signed 16-bit mono PCM on stdout
exec:
  # command: "piper --model en_GB-alan-low.onnx --output-raw"
  sample_rate: 22050
  timeout: "5m"

# keep synthesized audio so repeated text skips the engine (--cache)
cache:
  enabled: false
  # defaults to the user cache directory
  # dir: "~/.cache/nanotts"
  max_size: 100  # MB
  ttl: "168h"
  # zstd level, 0 stores raw PCM
  compression_level: 3
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the nanotts config file",
	Long:    paragraph(fmt.Sprintf("\n%s the nanotts config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("nanotts config\nnanotts config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("nanotts", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Fprintln(os.Stderr, "Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if configFile == "" {
			return errors.New("no config file location")
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: '%s' is not a supported configuration type: use '%s' or '%s'", errUsage, ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
