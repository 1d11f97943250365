// Package yamlutil decodes the YAML found in frontmatter blocks and config
// files with goccy/go-yaml. Inputs are size-bounded and decoder failures
// come back as one positioned line, ready to show to an author.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds a single document. Frontmatter and config files are
// far below it.
const MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Unmarshal decodes data into v. Keys without a matching field are ignored,
// which suits frontmatter carrying site-specific extras.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict is Unmarshal but fails on unknown keys, catching typos in
// config files.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %s", Describe(err))
	}
	return nil
}

// Describe keeps the "[line:col] message" line of a decoder error and drops
// the source excerpt printed below it.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg, _, _ := strings.Cut(yaml.FormatError(err, false, false), "\n")
	return strings.TrimSpace(msg)
}
