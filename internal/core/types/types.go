// Package types renders the structural element types carried by channels
// and declared on component slots: primitive names and parametric
// container forms, stable across runs for the same declared type.
package types

import "strings"

// Descriptor is a structural type name: either a bare primitive ("bytes",
// "str", "int", "float") or a parametric container ("list", "Optional", ...)
// wrapping zero or more further descriptors.
type Descriptor struct {
	Name   string
	Params []Descriptor
}

func Bytes() Descriptor { return Descriptor{Name: "bytes"} }
func Str() Descriptor   { return Descriptor{Name: "str"} }
func Int() Descriptor   { return Descriptor{Name: "int"} }
func Float() Descriptor { return Descriptor{Name: "float"} }
func Bool() Descriptor  { return Descriptor{Name: "bool"} }

// Container builds a parametric descriptor, e.g. Container("list", Bytes())
// renders as "list[bytes]".
func Container(name string, params ...Descriptor) Descriptor {
	return Descriptor{Name: name, Params: params}
}

// Equal reports structural equality, used by edge type-checking (spec
// P7/TypeMismatch): element types must match exactly, not just by name.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.Name != o.Name || len(d.Params) != len(o.Params) {
		return false
	}
	for i := range d.Params {
		if !d.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

// String renders the stable structured name used by the discovery surface.
func (d Descriptor) String() string {
	if len(d.Params) == 0 {
		return d.Name
	}
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	return d.Name + "[" + strings.Join(parts, ", ") + "]"
}
