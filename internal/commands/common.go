// Package commands wires the converter and comparer CLIs on top of the core
// packages. All file I/O and report presentation lives here; the core only
// sees byte buffers and returns structured results.
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/bankrec-dev/bankrec/internal/buildinfo"
	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/format"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// versionString is shown by --version on both binaries.
func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
}

// newLogger returns a stderr logger; debug messages only appear with
// --verbose. The core never logs, so this is the tools' only diagnostics
// channel besides the error path.
func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// loadScales loads the currency scale override file, or the built-in table
// when path is empty.
func loadScales(path string) (*currency.Table, error) {
	if path == "" {
		return currency.Default(), nil
	}
	return currency.Load(path)
}

// resolveCodec picks the codec named by the flag, or detects one by content
// when the flag is empty.
func resolveCodec(reg *format.Registry, name string, data []byte, logger *log.Logger) (format.Codec, error) {
	if name != "" {
		c := reg.Get(name)
		if c == nil {
			return nil, fmt.Errorf("unknown format %q (supported: %v)", name, reg.Names())
		}
		return c, nil
	}
	c := reg.Detect(data)
	if c == nil {
		return nil, fmt.Errorf("could not detect input format; pass one of %v explicitly", reg.Names())
	}
	logger.Debug("detected format by content", "format", c.Name())
	return c, nil
}

// decodeFile reads and decodes one input file.
func decodeFile(reg *format.Registry, path, formatName string, logger *log.Logger) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	codec, err := resolveCodec(reg, formatName, data, logger)
	if err != nil {
		return nil, err
	}
	records, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Debug("decoded file", "path", path, "format", codec.Name(), "records", len(records))
	return records, nil
}
