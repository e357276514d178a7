package ir

import (
	"fmt"
	"strings"
)

// Function is a callable unit. Fields holds the parameters followed by the
// locals; the first ArgumentsCount fields are the parameters.
type Function struct {
	ReturnType       Type
	Name             string
	ArgumentsCount   int
	Fields           []*Field
	ControlFlowGraph *ControlFlowGraph
}

// NewFunction builds a function. argumentsCount must not exceed len(fields).
func NewFunction(returnType Type, name string, argumentsCount int, fields []*Field, cfg *ControlFlowGraph) (*Function, error) {
	if argumentsCount < 0 {
		return nil, fmt.Errorf("function %s: negative arguments count %d", name, argumentsCount)
	}
	if argumentsCount > len(fields) {
		return nil, fmt.Errorf("function %s: %w", name, arity("function", "arguments count", argumentsCount, "fields", len(fields)))
	}
	if cfg == nil {
		cfg = NewControlFlowGraph(name)
	}
	return &Function{
		ReturnType:       returnType,
		Name:             name,
		ArgumentsCount:   argumentsCount,
		Fields:           fields,
		ControlFlowGraph: cfg,
	}, nil
}

// Parameters returns the parameter prefix of Fields.
func (f *Function) Parameters() []*Field {
	n := min(max(f.ArgumentsCount, 0), len(f.Fields))
	return f.Fields[:n]
}

// Locals returns the fields after the parameters.
func (f *Function) Locals() []*Field {
	n := min(max(f.ArgumentsCount, 0), len(f.Fields))
	return f.Fields[n:]
}

// Signature renders the function header, e.g. "i32 add(i32 a, i32 b)".
func (f *Function) Signature() string {
	params := f.Parameters()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", typeString(f.ReturnType), f.Name, strings.Join(parts, ", "))
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("function ")
	sb.WriteString(f.Signature())
	sb.WriteString(" {")
	for _, l := range f.Locals() {
		sb.WriteString("\n  local ")
		sb.WriteString(l.String())
	}
	for _, b := range f.ControlFlowGraph.Blocks() {
		sb.WriteString("\n")
		sb.WriteString(b.String())
	}
	sb.WriteString("\n}")
	return sb.String()
}
