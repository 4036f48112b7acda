package report

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/stackaudit/pkg/errors"
)

// Format selects the report encoding.
type Format string

const (
	FormatFNCI Format = "fnci"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// DefaultFilename is where the default FNCI report is written.
const DefaultFilename = "nuget_groups_for_import.xml"

// Formats lists the supported formats, default first.
func Formats() []Format {
	return []Format{FormatFNCI, FormatJSON, FormatDOT, FormatSVG}
}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown report format %q (available: fnci, json, dot, svg)", s)
}

// Extension returns the conventional file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatFNCI:
		return ".xml"
	default:
		return "." + string(f)
	}
}

// ContentType returns the media type stored with uploaded reports.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/xml"
	}
}

// Meta describes the run a report belongs to.
type Meta struct {
	RunID       string
	Owner       string
	Hostname    string
	GeneratedAt time.Time
}

// NewMeta fills Hostname and GeneratedAt for the current machine and time.
func NewMeta(runID, owner string) Meta {
	return Meta{
		RunID:       runID,
		Owner:       owner,
		Hostname:    Hostname(),
		GeneratedAt: time.Now(),
	}
}

// Hostname returns the machine name, or "localhost" if it cannot be determined.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}

// Write renders s in format f to w.
func Write(ctx context.Context, w io.Writer, f Format, s *Set, m Meta) error {
	var err error
	switch f {
	case FormatFNCI, "":
		err = WriteFNCI(w, s, m)
	case FormatJSON:
		err = WriteJSON(w, s, m)
	case FormatDOT:
		err = WriteDOT(w, s)
	case FormatSVG:
		err = WriteSVG(ctx, w, s)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown report format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeReport, err, "write %s report", f)
	}
	return nil
}
