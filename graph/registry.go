package graph

import (
	"fmt"
	"os"
	"sync"

	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
)

// Constructor builds a Graph from an already-open basePath, given the parsed
// Properties that named this class. It is the registry's replacement for
// reflective class instantiation: a graphclass string maps to one of these
// instead of a fully-qualified type name loaded at runtime.
type Constructor func(basePath string, props *Properties, opts ...OpenOption) (Graph, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{
		format.ClassBVGraph: func(basePath string, _ *Properties, opts ...OpenOption) (Graph, error) {
			return OpenFiles(basePath, opts...)
		},
	}
)

// RegisterClass adds or replaces the constructor used for a graphclass name.
// Names are matched after format.NormalizeClassName, so callers register the
// canonical lower-cased form.
func RegisterClass(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[format.NormalizeClassName(name)] = ctor
}

// Open reads basePath+".properties" to discover the graphclass, then
// dispatches to the registered Constructor for that class.
func Open(basePath string, opts ...OpenOption) (Graph, error) {
	propsPath := basePath + ".properties"
	props, err := readProperties(propsPath)
	if err != nil {
		return nil, err
	}

	registryMu.RLock()
	ctor, ok := registry[format.NormalizeClassName(props.GraphClass)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownGraphClass, props.GraphClass)
	}

	return ctor(basePath, props, opts...)
}

func readProperties(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseProperties(f)
}
