// Package config holds the immutable run configuration. It is constructed
// once at startup and handed to component constructors; no package reaches
// back into globals or re-reads the file.
package config

import (
	"errors"
	"fmt"
	"os"
)

// Capture configures the time-boxed capture tool source.
type Capture struct {
	Path           string   `json:"path" yaml:"path"`                       // root scanned for <32-hex-id>/images/*.jpg
	Command        []string `json:"command" yaml:"command"`                 // capture tool argv; empty disables the source
	RuntimeSeconds int      `json:"runtime_seconds" yaml:"runtime_seconds"` // forced-kill deadline for the tool
}

// Snapshot configures the authenticated HTTP still-image source.
type Snapshot struct {
	URL      string `json:"url" yaml:"url"` // empty disables the source
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Prefix   string `json:"prefix" yaml:"prefix"` // output file = prefix + epoch-millis + ".jpg"
}

// Detect configures the external detection tool invocation.
type Detect struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Dir       string `json:"dir" yaml:"dir"`         // tool working directory; relative paths resolve here
	Command   string `json:"command" yaml:"command"` // template with {cfg} {weights} {data} {out} {images}
	Cfg       string `json:"cfg" yaml:"cfg"`
	Weights   string `json:"weights" yaml:"weights"`
	Data      string `json:"data" yaml:"data"`
	OutPrefix string `json:"out_prefix" yaml:"out_prefix"` // base path for synthesized output names
}

// Archive configures where timestamped cycle directories are created.
type Archive struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Display configures the fixed canvas the grid is laid out on.
type Display struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Config is the full run configuration.
type Config struct {
	Capture   Capture  `json:"capture" yaml:"capture"`
	Snapshot  Snapshot `json:"snapshot" yaml:"snapshot"`
	Detect    Detect   `json:"detect" yaml:"detect"`
	Archive   Archive  `json:"archive" yaml:"archive"`
	Display   Display  `json:"display" yaml:"display"`
	MaxImages int      `json:"max_images" yaml:"max_images"` // cap per cycle before detection/display
}

// Default returns the built-in configuration: a 1280x720 canvas, at most 9
// images per cycle, archives under ./archive.
func Default() Config {
	return Config{
		Capture: Capture{RuntimeSeconds: 60},
		Archive: Archive{Dir: "archive"},
		Display: Display{Width: 1280, Height: 720},
		Detect:  Detect{OutPrefix: "predictions"},

		MaxImages: 9,
	}
}

// Env variable names that override file-held snapshot credentials, so
// secrets can stay out of the config file.
const (
	EnvSnapUser = "CAMBANZO_SNAP_USER"
	EnvSnapPass = "CAMBANZO_SNAP_PASS"
)

// applyEnv merges credential overrides from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSnapUser); v != "" {
		c.Snapshot.Username = v
	}
	if v := os.Getenv(EnvSnapPass); v != "" {
		c.Snapshot.Password = v
	}
}

// Validate rejects configurations no cycle could run with. It does not
// require sources to be configured; `show` and `detect` run without any.
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display: canvas %dx%d is not positive", c.Display.Width, c.Display.Height)
	}
	if c.MaxImages < 1 {
		return fmt.Errorf("max_images: %d, want >= 1", c.MaxImages)
	}
	if len(c.Capture.Command) > 0 {
		if c.Capture.RuntimeSeconds <= 0 {
			return fmt.Errorf("capture: runtime_seconds %d, want > 0", c.Capture.RuntimeSeconds)
		}
		if c.Capture.Path == "" {
			return errors.New("capture: command set but path empty")
		}
	}
	if c.Snapshot.URL != "" && c.Snapshot.Prefix == "" {
		return errors.New("snapshot: url set but prefix empty")
	}
	if c.Detect.Enabled {
		if c.Detect.Command == "" {
			return errors.New("detect: enabled but command empty")
		}
		if c.Detect.Dir == "" {
			return errors.New("detect: enabled but dir empty")
		}
	}
	return nil
}
