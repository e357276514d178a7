package ir

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Module is a whole compilation unit. Structures, functions and dispatch
// table keys are kept in insertion order so emission is deterministic.
type Module struct {
	Name              string
	ConstantPool      *ConstantPool
	GlobalDataSection *GlobalDataSection
	GlobalInit        *ControlFlowGraph
	// EntryPoint names the function the program starts at; empty when unset.
	EntryPoint string

	structures *orderedmap.OrderedMap[string, *Structure]
	functions  *orderedmap.OrderedMap[string, *Function]
	vtableKeys *orderedmap.OrderedMap[string, []string]
	itableKeys *orderedmap.OrderedMap[string, []InterfaceTableEntry]
}

func NewModule(name string) *Module {
	return &Module{
		Name:              name,
		ConstantPool:      NewConstantPool(),
		GlobalDataSection: NewGlobalDataSection(),
		GlobalInit:        NewControlFlowGraph("<global_init>"),
		structures:        orderedmap.New[string, *Structure](),
		functions:         orderedmap.New[string, *Function](),
		vtableKeys:        orderedmap.New[string, []string](),
		itableKeys:        orderedmap.New[string, []InterfaceTableEntry](),
	}
}

// PushStructure registers s under its name. A second push with the same name
// replaces the first and keeps its position.
func (m *Module) PushStructure(s *Structure) {
	m.structures.Set(s.Name, s)
}

// PushFunction registers f under its name. A second push with the same name
// replaces the first and keeps its position.
func (m *Module) PushFunction(f *Function) {
	m.functions.Set(f.Name, f)
}

// Structure looks up a structure by name.
func (m *Module) Structure(name string) (*Structure, bool) {
	return m.structures.Get(name)
}

// Function looks up a function by name.
func (m *Module) Function(name string) (*Function, bool) {
	return m.functions.Get(name)
}

// Structures returns the structures in insertion order.
func (m *Module) Structures() []*Structure {
	return values(m.structures)
}

// Functions returns the functions in insertion order.
func (m *Module) Functions() []*Function {
	return values(m.functions)
}

// SetVTableKeys records the virtual table key order of a structure.
func (m *Module) SetVTableKeys(structure string, keys []string) {
	m.vtableKeys.Set(structure, keys)
}

// SetITableKeys records the interface table layout of a structure.
func (m *Module) SetITableKeys(structure string, entries []InterfaceTableEntry) {
	m.itableKeys.Set(structure, entries)
}

// VTableKeys returns the virtual table keys of a structure.
func (m *Module) VTableKeys(structure string) ([]string, bool) {
	return m.vtableKeys.Get(structure)
}

// ITableKeys returns the interface table layout of a structure.
func (m *Module) ITableKeys(structure string) ([]InterfaceTableEntry, bool) {
	return m.itableKeys.Get(structure)
}

// VTableOwners lists structures with a virtual table, in insertion order.
func (m *Module) VTableOwners() []string {
	return keys(m.vtableKeys)
}

// ITableOwners lists structures with an interface table, in insertion order.
func (m *Module) ITableOwners() []string {
	return keys(m.itableKeys)
}

// SetEntryPoint names the program entry function.
func (m *Module) SetEntryPoint(name string) {
	m.EntryPoint = name
}

func (m *Module) String() string {
	var sb strings.Builder
	sb.WriteString("module ")
	sb.WriteString(m.Name)
	for _, s := range m.Structures() {
		sb.WriteString("\n")
		sb.WriteString(s.String())
	}
	if m.ConstantPool.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.ConstantPool.String())
	}
	for _, d := range m.GlobalDataSection.Data {
		sb.WriteString("\n")
		sb.WriteString(d.String())
	}
	for _, f := range m.Functions() {
		sb.WriteString("\n")
		sb.WriteString(f.String())
	}
	return sb.String()
}

func values[V any](om *orderedmap.OrderedMap[string, V]) []V {
	if om == nil {
		return nil
	}
	out := make([]V, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func keys[V any](om *orderedmap.OrderedMap[string, V]) []string {
	if om == nil {
		return nil
	}
	out := make([]string, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
