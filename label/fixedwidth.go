package label

import (
	"fmt"
	"strconv"

	"github.com/webgraph-go/bvgraph/bitio"
)

// FixedWidthIntLabel is the simplest non-trivial label variant: a single
// unsigned integer written in a fixed number of bits, the same width for
// every arc regardless of source. This is the label spec most BV-graph
// deployments ship when they just need one small per-arc weight or
// timestamp.
type FixedWidthIntLabel struct {
	Width uint // bits per value, 1..64
	Value uint64
}

var _ Label = (*FixedWidthIntLabel)(nil)

// NewFixedWidthLabel builds a zero-valued label of the given bit width.
func NewFixedWidthLabel(width uint) *FixedWidthIntLabel {
	return &FixedWidthIntLabel{Width: width}
}

// NewFixedWidthLabelFromParams parses a labelspec parameter string
// ("bits=<n>") into a FixedWidthIntLabel constructor result; it is the
// Constructor registered under "fixedwidthintlabel".
func NewFixedWidthLabelFromParams(params string) (Label, error) {
	width := uint(32)
	if params != "" {
		key, value, ok := cutParam(params, "bits")
		if !ok || key != "bits" {
			return nil, fmt.Errorf("label: malformed fixedwidthintlabel params %q", params)
		}
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("label: invalid fixedwidthintlabel width %q: %w", value, err)
		}
		width = uint(n)
	}
	if width == 0 || width > 64 {
		return nil, fmt.Errorf("label: fixedwidthintlabel width %d out of range [1,64]", width)
	}

	return NewFixedWidthLabel(width), nil
}

func cutParam(s, wantKey string) (key, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}

	return "", "", false
}

// Spec renders this label's labelspec string, the inverse of
// NewFixedWidthLabelFromParams.
func (l *FixedWidthIntLabel) Spec() string {
	return fmt.Sprintf("fixedwidthintlabel(bits=%d)", l.Width)
}

func (l *FixedWidthIntLabel) BitLength(source int64) int { return int(l.Width) }

func (l *FixedWidthIntLabel) WriteTo(w *bitio.Writer, source int64) error {
	return w.WriteBits(l.Value, l.Width)
}

func (l *FixedWidthIntLabel) ReadFrom(r *bitio.Reader, source int64) error {
	v, err := r.ReadBits(l.Width)
	if err != nil {
		return err
	}
	l.Value = v

	return nil
}

func (l *FixedWidthIntLabel) Copy() Label {
	return &FixedWidthIntLabel{Width: l.Width, Value: l.Value}
}
