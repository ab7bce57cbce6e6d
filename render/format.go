package render

import (
	"fmt"
	"strings"
)

// Format identifies the storage format of a color or depth attachment.
type Format int

const (
	FormatNone Format = iota
	FormatRGBA8
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth16
	FormatDepth24
	FormatDepth32F
)

var formatNames = map[Format]string{
	FormatNone:     "none",
	FormatRGBA8:    "rgba8",
	FormatRGBA16F:  "rgba16f",
	FormatRGBA32F:  "rgba32f",
	FormatDepth16:  "depth16",
	FormatDepth24:  "depth24",
	FormatDepth32F: "depth32f",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// IsDepth reports whether f is a depth attachment format.
func (f Format) IsDepth() bool {
	return f == FormatDepth16 || f == FormatDepth24 || f == FormatDepth32F
}

// IsFloat reports whether f stores unclamped floating point values.
func (f Format) IsFloat() bool {
	return f == FormatRGBA16F || f == FormatRGBA32F || f == FormatDepth32F
}

// ParseFormat parses a color format name as used in configuration files.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range formatNames {
		if n == name && f != FormatNone && !f.IsDepth() {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("%w: unknown color format %q", ErrInvalidConfig, s)
}

// Filter selects the sampling filter of a texture.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

func (f Filter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}
