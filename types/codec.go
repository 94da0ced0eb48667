package types

import "strings"

// ListSeparator joins operations in the scalar storage encoding.
// Operation names containing the separator do not round-trip;
// this is a documented constraint, not validated here.
const ListSeparator = "|"

// EncodeOperations renders an operation set as the scalar value stored
// in a single record field. An empty or nil set encodes to the empty
// string, the storage null sentinel.
func EncodeOperations(ops Operations) string {
	if len(ops) == 0 {
		return ""
	}
	names := make([]string, 0, len(ops))
	for _, op := range ops.Split() {
		names = append(names, string(op))
	}
	return strings.Join(names, ListSeparator)
}

// DecodeOperations parses the scalar storage encoding back to an
// operation set. The null sentinel decodes to an empty set.
func DecodeOperations(s string) Operations {
	if s == "" {
		return NewOperations()
	}
	parts := strings.Split(s, ListSeparator)
	ops := make(Operations, len(parts))
	for _, p := range parts {
		if p != "" {
			ops[Operation(p)] = struct{}{}
		}
	}
	return ops
}
