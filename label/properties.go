package label

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
)

// Properties holds the parsed contents of a labelled overlay's .properties
// file: graphclass (always format.ClassArcLabelledGraph), the underlying
// graph's basename, and the labelspec descriptor string.
type Properties struct {
	GraphClass      string
	UnderlyingGraph string
	LabelSpec       string
}

// ParseProperties reads a labelled-overlay .properties file. basePath is
// used to resolve underlyinggraph when it is given as a relative path: it
// is resolved relative to the directory containing the properties file
// itself, not the process's working directory.
func ParseProperties(r io.Reader, basePath string) (*Properties, error) {
	raw := map[string]string{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: malformed properties line %q", errs.ErrInvalidPropertyValue, line)
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, k := range []string{"graphclass", "underlyinggraph", "labelspec"} {
		if _, ok := raw[k]; !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrMissingPropertyKey, k)
		}
	}

	underlying := raw["underlyinggraph"]
	if !filepath.IsAbs(underlying) {
		underlying = filepath.Join(filepath.Dir(basePath), underlying)
	}

	return &Properties{
		GraphClass:      format.NormalizeClassName(raw["graphclass"]),
		UnderlyingGraph: underlying,
		LabelSpec:       raw["labelspec"],
	}, nil
}

// Text renders the canonical key=value serialization written to disk.
// underlyingGraph is stored verbatim (callers pass a basename relative to
// the properties file's own directory, matching how ParseProperties
// resolves it back on load).
func (p *Properties) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graphclass=%s\n", p.GraphClass)
	fmt.Fprintf(&b, "underlyinggraph=%s\n", p.UnderlyingGraph)
	fmt.Fprintf(&b, "labelspec=%s\n", p.LabelSpec)

	return b.String()
}

// Write serializes p as a .properties file.
func (p *Properties) Write(w io.Writer) error {
	_, err := io.WriteString(w, p.Text())
	return err
}
