package ir_test

import (
	"reflect"
	"slices"
	"testing"

	"irkit/internal/ir"
)

func shapes() []ir.DispatchClass {
	drawable := ir.DispatchInterface{Name: "Drawable", Methods: []string{"draw"}}
	named := ir.DispatchInterface{Name: "Named", Methods: []string{"name", "rename"}}
	return []ir.DispatchClass{
		{Name: "Shape", Methods: []string{"area", "name"}, Interfaces: []ir.DispatchInterface{named}},
		{Name: "Circle", Parent: "Shape", Methods: []string{"radius", "area"}, Interfaces: []ir.DispatchInterface{drawable, named}},
		{Name: "Ring", Parent: "Circle", Methods: []string{"inner", "name"}},
	}
}

func TestVTableLayout(t *testing.T) {
	tests := []struct {
		class string
		want  []string
	}{
		{"Shape", []string{"area", "name"}},
		{"Circle", []string{"area", "name", "radius"}},
		{"Ring", []string{"area", "name", "radius", "inner"}},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, err := ir.VTableLayout(shapes(), tt.class)
			if err != nil {
				t.Fatalf("VTableLayout: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTableLayoutStable checks that two independent computations over the same
// class list produce identical layouts.
func TestTableLayoutStable(t *testing.T) {
	for _, class := range []string{"Shape", "Circle", "Ring"} {
		v1, err1 := ir.VTableLayout(shapes(), class)
		v2, err2 := ir.VTableLayout(shapes(), class)
		if err1 != nil || err2 != nil || !slices.Equal(v1, v2) {
			t.Errorf("%s vtable differs: %v vs %v", class, v1, v2)
		}
		i1, err1 := ir.ITableLayout(shapes(), class)
		i2, err2 := ir.ITableLayout(shapes(), class)
		if err1 != nil || err2 != nil || !reflect.DeepEqual(i1, i2) {
			t.Errorf("%s itable differs: %v vs %v", class, i1, i2)
		}
	}
}

func TestITableLayout(t *testing.T) {
	got, err := ir.ITableLayout(shapes(), "Ring")
	if err != nil {
		t.Fatalf("ITableLayout: %v", err)
	}
	want := []ir.InterfaceTableEntry{
		{Name: "Named", Functions: []string{"name", "rename"}},
		{Name: "Drawable", Functions: []string{"draw"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("itable = %v, want %v", got, want)
	}
}

func TestResolveVTable(t *testing.T) {
	vt, err := ir.ResolveVTable(shapes(), "Ring", func(class, method string) string {
		return class + "." + method
	})
	if err != nil {
		t.Fatalf("ResolveVTable: %v", err)
	}
	want := "vtable {Circle.area, Ring.name, Circle.radius, Ring.inner}"
	if got := vt.String(); got != want {
		t.Errorf("ResolveVTable = %q, want %q", got, want)
	}
}

func TestTableLayoutErrors(t *testing.T) {
	cyclic := []ir.DispatchClass{
		{Name: "A", Parent: "B"},
		{Name: "B", Parent: "A"},
	}
	if _, err := ir.VTableLayout(cyclic, "A"); err == nil {
		t.Error("cycle not reported")
	}
	orphan := []ir.DispatchClass{{Name: "A", Parent: "Missing"}}
	if _, err := ir.ITableLayout(orphan, "A"); err == nil {
		t.Error("unknown parent not reported")
	}
	if _, err := ir.VTableLayout(nil, "A"); err == nil {
		t.Error("unknown class not reported")
	}
}
