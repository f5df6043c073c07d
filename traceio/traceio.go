// Package traceio saves and loads solved search traces so a run can be
// replayed later or on another machine.
package traceio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/gametrace/search"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

var ErrUnknownFormat = errors.New("unknown trace format")

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFor picks a format from a file extension.
func FormatFor(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
}

func Write(w io.Writer, res *search.Result, f Format) error {
	if res == nil {
		return errors.New("nothing to write")
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
}

// Read decodes a trace and checks it with search.Verify, so a hand-edited
// file that no longer describes a real search is rejected.
func Read(r io.Reader, f Format) (*search.Result, error) {
	res := &search.Result{}
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(res)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(res)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %v trace: %w", f, err)
	}
	if res.Tree == nil {
		return nil, errors.New("trace has no tree")
	}
	if err := search.Verify(res); err != nil {
		return nil, err
	}
	return res, nil
}

func WriteFile(filename string, res *search.Result) error {
	f, err := FormatFor(filename)
	if err != nil {
		return err
	}
	fh, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(fh, res, f); err != nil {
		fh.Close()
		return err
	}
	log.Info().Str("filename", filename).Str("format", f.String()).
		Int("steps", res.Len()).Msg("trace-written")
	return fh.Close()
}

func ReadFile(filename string) (*search.Result, error) {
	f, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	res, err := Read(fh, f)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("filename", filename).Int("steps", res.Len()).Msg("trace-read")
	return res, nil
}
