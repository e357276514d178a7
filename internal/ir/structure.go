package ir

import "strings"

// Field is a named, typed slot of a structure or a function frame.
type Field struct {
	Name string
	Type Type
}

func NewField(name string, t Type) *Field {
	return &Field{Name: name, Type: t}
}

func (f *Field) String() string {
	return typeString(f.Type) + " " + f.Name
}

// Structure is a named aggregate. Field order is the in-memory layout order.
type Structure struct {
	Name   string
	Fields []*Field
}

func NewStructure(name string, fields ...*Field) *Structure {
	return &Structure{Name: name, Fields: fields}
}

func (s *Structure) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return "structure " + s.Name + " {" + strings.Join(parts, ", ") + "}"
}
