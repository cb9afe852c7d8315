package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
)

// StreamPosition names one of the five bit-stream positions a
// compressionflags entry can assign a code to.
type StreamPosition string

const (
	PositionOutdegrees StreamPosition = "OUTDEGREES"
	PositionReferences StreamPosition = "REFERENCES"
	PositionBlocks     StreamPosition = "BLOCKS"
	PositionIntervals  StreamPosition = "INTERVALS"
	PositionResiduals  StreamPosition = "RESIDUALS"
)

// Properties holds the parsed contents of a .properties file: the
// parameters needed to parse a .graph bit stream.
type Properties struct {
	GraphClass        string
	Nodes             int64
	Arcs              int64
	WindowSize        int
	MaxRefCount       int
	MinIntervalLength int
	ZetaK             uint
	CompressionFlags  map[StreamPosition]format.CodeType
	AvgGap            float64
}

// DefaultCompressionFlags returns the codes used when compressionflags
// leaves a position unlisted: γ everywhere except residuals, which default
// to ζ_k per spec.
func DefaultCompressionFlags() map[StreamPosition]format.CodeType {
	return map[StreamPosition]format.CodeType{
		PositionOutdegrees: format.CodeGamma,
		PositionReferences: format.CodeGamma,
		PositionBlocks:     format.CodeGamma,
		PositionIntervals:  format.CodeGamma,
		PositionResiduals:  format.CodeZeta,
	}
}

// CodeFor returns the configured code for pos, falling back to the default
// when compressionflags didn't name it.
func (p *Properties) CodeFor(pos StreamPosition) format.CodeType {
	if c, ok := p.CompressionFlags[pos]; ok {
		return c
	}

	return DefaultCompressionFlags()[pos]
}

// ParseProperties reads a UTF-8 key=value-per-line .properties file.
func ParseProperties(r io.Reader) (*Properties, error) {
	p := &Properties{CompressionFlags: map[StreamPosition]format.CodeType{}}
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

	required := []string{"graphclass", "nodes", "arcs", "windowsize", "maxrefcount", "minintervallength", "zetak", "compressionflags"}
	for _, k := range required {
		if _, ok := raw[k]; !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrMissingPropertyKey, k)
		}
	}

	p.GraphClass = format.NormalizeClassName(raw["graphclass"])

	var err error
	if p.Nodes, err = strconv.ParseInt(raw["nodes"], 10, 64); err != nil {
		return nil, fmt.Errorf("%w: nodes: %v", errs.ErrInvalidPropertyValue, err)
	}
	if p.Arcs, err = strconv.ParseInt(raw["arcs"], 10, 64); err != nil {
		return nil, fmt.Errorf("%w: arcs: %v", errs.ErrInvalidPropertyValue, err)
	}
	wsz, err := strconv.Atoi(raw["windowsize"])
	if err != nil {
		return nil, fmt.Errorf("%w: windowsize: %v", errs.ErrInvalidPropertyValue, err)
	}
	p.WindowSize = wsz
	mrc, err := strconv.Atoi(raw["maxrefcount"])
	if err != nil {
		return nil, fmt.Errorf("%w: maxrefcount: %v", errs.ErrInvalidPropertyValue, err)
	}
	p.MaxRefCount = mrc
	mil, err := strconv.Atoi(raw["minintervallength"])
	if err != nil {
		return nil, fmt.Errorf("%w: minintervallength: %v", errs.ErrInvalidPropertyValue, err)
	}
	p.MinIntervalLength = mil
	zk, err := strconv.ParseUint(raw["zetak"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: zetak: %v", errs.ErrInvalidPropertyValue, err)
	}
	p.ZetaK = uint(zk)

	if raw["compressionflags"] != "" {
		for _, tok := range strings.Split(raw["compressionflags"], ",") {
			pos, codeName, ok := strings.Cut(strings.TrimSpace(tok), ":")
			if !ok {
				return nil, fmt.Errorf("%w: compressionflags token %q", errs.ErrInvalidPropertyValue, tok)
			}
			code, ok := format.ParseCodeType(codeName)
			if !ok {
				return nil, fmt.Errorf("%w: unknown code %q", errs.ErrInvalidPropertyValue, codeName)
			}
			p.CompressionFlags[StreamPosition(strings.ToUpper(pos))] = code
		}
	}

	if avg, ok := raw["avggap"]; ok {
		if p.AvgGap, err = strconv.ParseFloat(avg, 64); err != nil {
			return nil, fmt.Errorf("%w: avggap: %v", errs.ErrInvalidPropertyValue, err)
		}
	}

	return p, nil
}

// Text renders the canonical key=value serialization used both to write
// the .properties file and as the input to cache.Fingerprint.
func (p *Properties) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "graphclass=%s\n", p.GraphClass)
	fmt.Fprintf(&b, "nodes=%d\n", p.Nodes)
	fmt.Fprintf(&b, "arcs=%d\n", p.Arcs)
	fmt.Fprintf(&b, "windowsize=%d\n", p.WindowSize)
	fmt.Fprintf(&b, "maxrefcount=%d\n", p.MaxRefCount)
	fmt.Fprintf(&b, "minintervallength=%d\n", p.MinIntervalLength)
	fmt.Fprintf(&b, "zetak=%d\n", p.ZetaK)

	positions := make([]string, 0, len(p.CompressionFlags))
	for pos := range p.CompressionFlags {
		positions = append(positions, string(pos))
	}
	sort.Strings(positions)

	tokens := make([]string, 0, len(positions))
	for _, pos := range positions {
		tokens = append(tokens, fmt.Sprintf("%s:%s", pos, p.CompressionFlags[StreamPosition(pos)]))
	}
	fmt.Fprintf(&b, "compressionflags=%s\n", strings.Join(tokens, ","))
	fmt.Fprintf(&b, "avggap=%g\n", p.AvgGap)

	return b.String()
}

// Write serializes p as a .properties file.
func (p *Properties) Write(w io.Writer) error {
	_, err := io.WriteString(w, p.Text())
	return err
}
