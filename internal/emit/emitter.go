package emit

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/pipeline"
)

// Format selects the output syntax of the descriptor.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatHCL    Format = "hcl"
	FormatKotlin Format = "kotlin"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatYAML

// renderer turns a validated document into bytes.
type renderer func(doc *Document) ([]byte, error)

var renderers = map[Format]renderer{
	FormatYAML:   renderYAML,
	FormatJSON:   renderJSON,
	FormatHCL:    renderHCL,
	FormatKotlin: renderKotlin,
}

// Formats returns the supported formats in a stable order.
func Formats() []Format {
	return []Format{FormatYAML, FormatJSON, FormatHCL, FormatKotlin}
}

// ParseFormat maps a format name to a Format. An empty name selects the
// default.
func ParseFormat(raw string) (Format, error) {
	if raw == "" {
		return DefaultFormat, nil
	}
	f := Format(strings.ToLower(raw))
	if _, ok := renderers[f]; !ok {
		return "", fmt.Errorf("unknown output format %q (supported: %s)", raw, strings.Join(formatNames(), ", "))
	}
	return f, nil
}

func formatNames() []string {
	var names []string
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return names
}

// Input is everything that goes into one descriptor.
type Input struct {
	Project     pipeline.Project
	VcsRoots    []*pipeline.VcsRoot
	Definitions []*pipeline.BuildDefinition
}

// Emit renders in as a descriptor in the given format. Definitions appear
// in the order given. Malformed field content fails with a
// *pipeline.SerializationError and no output.
func Emit(ctx context.Context, in Input, format Format) ([]byte, error) {
	logger := ctxlog.FromContext(ctx).With("format", format)

	render, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	doc, err := NewDocument(in.Project, in.VcsRoots, in.Definitions)
	if err != nil {
		return nil, err
	}
	if len(doc.BuildTypes) == 0 {
		logger.Warn("Emitting a descriptor without build types.")
	}

	out, err := render(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s descriptor: %w", format, err)
	}
	logger.Debug("Descriptor rendered.", "build_types", len(doc.BuildTypes), "bytes", len(out), "digest", Digest(out))
	return out, nil
}
