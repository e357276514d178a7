package ir

import (
	"fmt"
	"slices"
)

// DispatchInterface is an interface as seen by table layout: a name and its
// methods in declaration order.
type DispatchInterface struct {
	Name    string
	Methods []string
}

// DispatchClass describes a structure with dynamic dispatch. Methods are the
// virtual methods it declares or overrides, in declaration order.
type DispatchClass struct {
	Name       string
	Parent     string
	Methods    []string
	Interfaces []DispatchInterface
}

// inheritanceChain returns the classes from the root ancestor down to name.
func inheritanceChain(classes map[string]*DispatchClass, name string) ([]*DispatchClass, error) {
	var chain []*DispatchClass
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			return nil, fmt.Errorf("dispatch class %s: inheritance cycle through %s", name, cur)
		}
		seen[cur] = true
		c, ok := classes[cur]
		if !ok {
			return nil, fmt.Errorf("dispatch class %s: unknown class %s", name, cur)
		}
		chain = append(chain, c)
		cur = c.Parent
	}
	slices.Reverse(chain)
	return chain, nil
}

func indexClasses(classes []DispatchClass) map[string]*DispatchClass {
	byName := make(map[string]*DispatchClass, len(classes))
	for i := range classes {
		byName[classes[i].Name] = &classes[i]
	}
	return byName
}

// VTableLayout computes the virtual table key order of the named class.
// Inherited methods keep the offset assigned by the ancestor that introduced
// them, overrides reuse that offset, and new methods are appended in
// declaration order. The result depends only on classes, so computing it
// twice yields the same list.
func VTableLayout(classes []DispatchClass, name string) ([]string, error) {
	chain, err := inheritanceChain(indexClasses(classes), name)
	if err != nil {
		return nil, err
	}
	var keys []string
	slot := make(map[string]int)
	for _, c := range chain {
		for _, m := range c.Methods {
			if _, ok := slot[m]; ok {
				continue
			}
			slot[m] = len(keys)
			keys = append(keys, m)
		}
	}
	return keys, nil
}

// ITableLayout computes the interface table of the named class: inherited
// interfaces first, then declared ones, each listed once with its methods in
// interface declaration order.
func ITableLayout(classes []DispatchClass, name string) ([]InterfaceTableEntry, error) {
	chain, err := inheritanceChain(indexClasses(classes), name)
	if err != nil {
		return nil, err
	}
	var entries []InterfaceTableEntry
	seen := make(map[string]bool)
	for _, c := range chain {
		for _, iface := range c.Interfaces {
			if seen[iface.Name] {
				continue
			}
			seen[iface.Name] = true
			entries = append(entries, InterfaceTableEntry{
				Name:      iface.Name,
				Functions: slices.Clone(iface.Methods),
			})
		}
	}
	return entries, nil
}

// ResolveVTable maps the key order of the named class to the implementing
// function names, taking the most derived definition of each key. impl names
// the function that implements method m for class c as impl(c, m).
func ResolveVTable(classes []DispatchClass, name string, impl func(class, method string) string) (*VirtualTable, error) {
	byName := indexClasses(classes)
	chain, err := inheritanceChain(byName, name)
	if err != nil {
		return nil, err
	}
	keys, err := VTableLayout(classes, name)
	if err != nil {
		return nil, err
	}
	owner := make(map[string]string, len(keys))
	for _, c := range chain {
		for _, m := range c.Methods {
			owner[m] = c.Name
		}
	}
	functions := make([]string, len(keys))
	for i, k := range keys {
		functions[i] = impl(owner[k], k)
	}
	return NewVirtualTable(functions), nil
}
