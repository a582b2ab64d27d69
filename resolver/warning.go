package resolver

import (
	"fmt"

	"github.com/tsawler/pdfgraph/core"
)

// WarningKind classifies a non-fatal problem.
type WarningKind int

const (
	// WarnUndecodedStream: a stream filter chain failed; the raw bytes were kept.
	WarnUndecodedStream WarningKind = iota + 1
	// WarnPlaceholderImage: an image failed to decode and was replaced.
	WarnPlaceholderImage
	// WarnUnresolvedReference: a nested reference was replaced by null.
	WarnUnresolvedReference
	// WarnFontProgram: an embedded font program could not be parsed.
	WarnFontProgram
	// WarnRecovered: the file structure was repaired while loading.
	WarnRecovered
)

func (k WarningKind) String() string {
	switch k {
	case WarnUndecodedStream:
		return "undecoded stream"
	case WarnPlaceholderImage:
		return "placeholder image"
	case WarnUnresolvedReference:
		return "unresolved reference"
	case WarnFontProgram:
		return "font program"
	case WarnRecovered:
		return "recovered"
	}
	return "unknown"
}

// Warning is a problem that was contained instead of failing the load.
type Warning struct {
	Ref  core.IndirectRef // object being resolved, zero when none
	Kind WarningKind
	Err  error
}

func (w Warning) String() string {
	if w.Ref == (core.IndirectRef{}) {
		return fmt.Sprintf("%s: %v", w.Kind, w.Err)
	}
	return fmt.Sprintf("%v: %s: %v", w.Ref, w.Kind, w.Err)
}

// Warn records a warning against the reference currently resolving and logs
// it at debug level. Extra attributes are passed to the logger.
func (c *Context) Warn(kind WarningKind, err error, attrs ...any) {
	ref, _ := c.Current()
	c.warnings = append(c.warnings, Warning{Ref: ref, Kind: kind, Err: err})

	args := append([]any{"kind", kind.String(), "ref", ref.String(), "err", err}, attrs...)
	c.logger.Debug("degraded object", args...)
}

// Warnings returns the recorded warnings.
func (c *Context) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}
