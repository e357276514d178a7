package ir

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ConstantPoolEntry is one literal: its type and displayable value.
type ConstantPoolEntry struct {
	Type  Type
	Value any
}

func NewConstantPoolEntry(t Type, value any) *ConstantPoolEntry {
	return &ConstantPoolEntry{Type: t, Value: value}
}

func (e *ConstantPoolEntry) String() string {
	return typeString(e.Type) + " " + formatValue(e.Value)
}

// IntValue reports the entry value as an integer when it holds one.
func (e *ConstantPoolEntry) IntValue() (int64, bool) {
	switch v := e.Value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		n, err := safecast.Conv[int64](v)
		return n, err == nil
	case uint:
		n, err := safecast.Conv[int64](v)
		return n, err == nil
	}
	return 0, false
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ConstantPool stores literals. Entries are append-only: the index returned by
// Push is permanent.
type ConstantPool struct {
	Entries []*ConstantPoolEntry
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{}
}

// Push appends e and returns its index, which equals the number of entries
// pushed before it.
func (p *ConstantPool) Push(e *ConstantPoolEntry) uint32 {
	idx, err := safecast.Conv[uint32](len(p.Entries))
	if err != nil {
		panic(fmt.Errorf("len(constant pool) overflow: %w", err))
	}
	p.Entries = append(p.Entries, e)
	return idx
}

// Intern returns the index of an entry equal to e, pushing e if none exists.
func (p *ConstantPool) Intern(e *ConstantPoolEntry) uint32 {
	for i, existing := range p.Entries {
		if TypesEqual(existing.Type, e.Type) && reflect.DeepEqual(existing.Value, e.Value) {
			idx, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("constant index overflow: %w", err))
			}
			return idx
		}
	}
	return p.Push(e)
}

// Entry returns the entry at index, or nil when out of range.
func (p *ConstantPool) Entry(index uint32) *ConstantPoolEntry {
	if p == nil || uint64(index) >= uint64(len(p.Entries)) {
		return nil
	}
	return p.Entries[index]
}

// Len returns the number of entries.
func (p *ConstantPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

func (p *ConstantPool) String() string {
	var sb strings.Builder
	sb.WriteString("constants {")
	for i, e := range p.Entries {
		fmt.Fprintf(&sb, "\n  $%d = %s", i, e)
	}
	sb.WriteString("\n}")
	return sb.String()
}
