package types

import (
	"reflect"
	"regexp"
	"strings"
)

// Resource capabilities.
// A resource type declares what it exposes by embedding the capability
// structs below (or implementing the interfaces directly); evaluators
// query availability through interface satisfaction. A missing
// capability removes the corresponding check, it never fails one.

// Permissioned is a resource instance carrying a discretionary
// permission set
type Permissioned interface {
	Permissions() PermissionSet
}

// Owned is a resource instance with an owning actor
type Owned interface {
	OwnerIdent() string
}

// Grouped is a resource instance with an owning group
type Grouped interface {
	GroupName() string
}

// AccessChecked lets a resource opt out of instance permission checks.
// Resources not implementing it are always checked.
type AccessChecked interface {
	CheckAccess() bool
}

// Tabler names the external storage table of a resource type,
// used by the KeyTable class key strategy
type Tabler interface {
	TableName() string
}

// SpecialPermission grants operations on one resource instance to a
// single actor or the members of a single group, independent of the
// owner/group/other permission set.
type SpecialPermission struct {
	ActorID    string
	Group      string
	Operations Operations
}

// SpecialPermissioned is a resource instance carrying per-actor or
// per-group permission entries
type SpecialPermissioned interface {
	SpecialPermissions() []SpecialPermission
}

// OwnerRef is an embeddable owner capability
type OwnerRef struct {
	Owner string
}

// OwnerIdent implements Owned
func (r OwnerRef) OwnerIdent() string { return r.Owner }

// GroupRef is an embeddable owning-group capability
type GroupRef struct {
	Group string
}

// GroupName implements Grouped
func (r GroupRef) GroupName() string { return r.Group }

// KeyStrategy selects how a resource class key is derived from a type
type KeyStrategy string

// class key derivation strategies
const (
	KeyRaw   KeyStrategy = "raw"
	KeyLower KeyStrategy = "lower"
	KeySnake KeyStrategy = "snake"
	KeyTable KeyStrategy = "table"
)

// KeyFunc derives the resource class key of a value
type KeyFunc func(v interface{}) string

var snakeWords = regexp.MustCompile(`[A-Z][0-9a-z]+`)

// ClassKeyFunc returns the KeyFunc of the given strategy.
// String values pass through as keys unchanged under every strategy.
func ClassKeyFunc(strategy KeyStrategy) KeyFunc {
	return func(v interface{}) string {
		if s, ok := v.(string); ok {
			return s
		}
		if strategy == KeyTable {
			if t, ok := v.(Tabler); ok {
				return t.TableName()
			}
		}

		name := typeName(v)
		switch strategy {
		case KeyLower, KeyTable:
			return strings.ToLower(name)
		case KeySnake:
			words := snakeWords.FindAllString(name, -1)
			if len(words) < 2 {
				return strings.ToLower(name)
			}
			for i, w := range words {
				words[i] = strings.ToLower(w)
			}
			return strings.Join(words, "_")
		}
		return name
	}
}

func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
