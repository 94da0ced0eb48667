package types

import (
	"sort"
	"strings"
)

// Operation can be done on resources by actors.
// The vocabulary is open: any identifier is a valid custom operation
// besides the preset ones.
type Operation string

// preset operations, users can define others
const (
	Create Operation = "create"
	Read   Operation = "read"
	Update Operation = "update"
	Delete Operation = "delete"
)

// DefaultOperations returns the preset operation set
func DefaultOperations() Operations {
	return NewOperations(Create, Read, Update, Delete)
}

// Operations is a set of operations
type Operations map[Operation]struct{}

// NewOperations creates an operation set of the given operations
func NewOperations(ops ...Operation) Operations {
	s := make(Operations, len(ops))
	for _, op := range ops {
		s[op] = struct{}{}
	}
	return s
}

// Add ops to the set, and returns it for chaining
func (s Operations) Add(ops ...Operation) Operations {
	for _, op := range ops {
		s[op] = struct{}{}
	}
	return s
}

// Contains tells if op is a member of s
func (s Operations) Contains(op Operation) bool {
	_, ok := s[op]
	return ok
}

// IsIn tells if all operations in s are members of b: s is subset of b
func (s Operations) IsIn(b Operations) bool {
	for op := range s {
		if !b.Contains(op) {
			return false
		}
	}
	return true
}

// Includes tells if all operations in b are members of s: s is superset of b
func (s Operations) Includes(b Operations) bool {
	return b.IsIn(s)
}

// Intersects tells if s and b share any operation
func (s Operations) Intersects(b Operations) bool {
	small, large := s, b
	if len(b) < len(s) {
		small, large = b, s
	}
	for op := range small {
		if large.Contains(op) {
			return true
		}
	}
	return false
}

// Union returns a new set of operations belong to s or b
func (s Operations) Union(b Operations) Operations {
	out := make(Operations, len(s)+len(b))
	for op := range s {
		out[op] = struct{}{}
	}
	for op := range b {
		out[op] = struct{}{}
	}
	return out
}

// Clone returns a copy of s which could be mutated independently
func (s Operations) Clone() Operations {
	out := make(Operations, len(s))
	for op := range s {
		out[op] = struct{}{}
	}
	return out
}

// Split returns the member operations in lexical order
func (s Operations) Split() []Operation {
	out := make([]Operation, 0, len(s))
	for op := range s {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Operations) String() string {
	ops := s.Split()
	ns := make([]string, 0, len(ops))
	for _, op := range ops {
		ns = append(ns, string(op))
	}
	return strings.Join(ns, "|")
}
