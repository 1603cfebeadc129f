// Package config loads mdlive settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	Editor Editor `toml:"editor"`
	Theme  Theme  `toml:"theme"`
	Images Images `toml:"images"`
	Log    Log    `toml:"log"`
}

type Editor struct {
	HighlightDelay   Duration `toml:"highlight_delay"`
	SyncDelay        Duration `toml:"sync_delay"`
	CodeHighlighting bool     `toml:"code_highlighting"`
	LineNumbers      bool     `toml:"line_numbers"`
	TabWidth         int      `toml:"tab_width"`
}

type Theme struct {
	// ChromaStyle names the chroma style used for code inside fenced blocks.
	ChromaStyle string `toml:"chroma_style"`
}

type Images struct {
	Enabled     bool     `toml:"enabled"`
	MaxWidth    int      `toml:"max_width"`  // cells
	MaxHeight   int      `toml:"max_height"` // rows, two pixels each
	FetchRemote bool     `toml:"fetch_remote"`
	Timeout     Duration `toml:"timeout"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default() Config {
	return Config{
		Editor: Editor{
			HighlightDelay:   Duration(100 * time.Millisecond),
			SyncDelay:        Duration(250 * time.Millisecond),
			CodeHighlighting: true,
			LineNumbers:      true,
			TabWidth:         4,
		},
		Theme: Theme{ChromaStyle: "dracula"},
		Images: Images{
			Enabled:     true,
			MaxWidth:    40,
			MaxHeight:   10,
			FetchRemote: true,
			Timeout:     Duration(5 * time.Second),
		},
		Log: Log{Level: "info", File: "mdlive.log"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

func Parse(data []byte) (Config, error) {
	return parse("<bytes>", data)
}

func parse(source string, data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return Config{}, perr
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Editor.HighlightDelay <= 0 {
		errs = append(errs, fmt.Errorf("%w: editor.highlight_delay must be positive", ErrInvalid))
	}
	if c.Editor.SyncDelay <= 0 {
		errs = append(errs, fmt.Errorf("%w: editor.sync_delay must be positive", ErrInvalid))
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		errs = append(errs, fmt.Errorf("%w: editor.tab_width must be between 1 and 16", ErrInvalid))
	}
	if c.Images.Enabled && (c.Images.MaxWidth < 1 || c.Images.MaxHeight < 1) {
		errs = append(errs, fmt.Errorf("%w: images.max_width and images.max_height must be positive", ErrInvalid))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return level, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
