package ir

import (
	"fmt"
	"strings"
)

// GlobalData is one statically allocated object. Size and Values are both
// optional; when both are present they must agree under Type.
type GlobalData struct {
	Name   string
	Type   Type
	Size   Operand
	Values []Operand
}

func NewGlobalData(name string, t Type, size Operand, values []Operand) *GlobalData {
	return &GlobalData{Name: name, Type: t, Size: size, Values: values}
}

func (d *GlobalData) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "global %s %s", typeString(d.Type), d.Name)
	if d.Size != nil {
		fmt.Fprintf(&sb, ", size=%s", d.Size)
	}
	if d.Values != nil {
		fmt.Fprintf(&sb, ", values=[%s]", joinOperands(d.Values))
	}
	return sb.String()
}

// GlobalDataSection holds the module's static data in declaration order.
type GlobalDataSection struct {
	Data []*GlobalData
}

func NewGlobalDataSection() *GlobalDataSection {
	return &GlobalDataSection{}
}

// Add appends a global.
func (s *GlobalDataSection) Add(d *GlobalData) {
	s.Data = append(s.Data, d)
}

// Lookup finds a global by name.
func (s *GlobalDataSection) Lookup(name string) *GlobalData {
	if s == nil {
		return nil
	}
	for _, d := range s.Data {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (s *GlobalDataSection) String() string {
	parts := make([]string, len(s.Data))
	for i, d := range s.Data {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}
