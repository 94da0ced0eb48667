package types

import (
	"fmt"
	"strconv"
)

// Relation names a position in a permission set
type Relation string

// relations of a permission set
const (
	RelationOwner Relation = "owner"
	RelationGroup Relation = "group"
	RelationOther Relation = "other"
)

// Relations lists all relations of a permission set
var Relations = []Relation{RelationOwner, RelationGroup, RelationOther}

// PermissionSet is the discretionary owner/group/other permission lists
// attached to one resource instance.
// A nil relation never matches any request, it does not mean "everyone".
type PermissionSet struct {
	Owner Operations
	Group Operations
	Other Operations
}

// Of returns the operations granted to the given relation
func (p PermissionSet) Of(r Relation) Operations {
	switch r {
	case RelationOwner:
		return p.Owner
	case RelationGroup:
		return p.Group
	case RelationOther:
		return p.Other
	}
	return nil
}

// Permissions implements the Permissioned capability,
// so the set could be embedded into resource types directly
func (p PermissionSet) Permissions() PermissionSet {
	return p
}

// Merge returns a copy of p with the non-nil relations of o set over it
func (p PermissionSet) Merge(o PermissionSet) PermissionSet {
	out := p
	if o.Owner != nil {
		out.Owner = o.Owner
	}
	if o.Group != nil {
		out.Group = o.Group
	}
	if o.Other != nil {
		out.Other = o.Other
	}
	return out
}

// Apply decodes a numeric permission encoding and sets it over p,
// re-validating the encoding on every assignment
func (p PermissionSet) Apply(raw string) (PermissionSet, error) {
	set, e := ParsePermissions(raw)
	if e != nil {
		return p, e
	}
	return p.Merge(set), nil
}

func (p PermissionSet) String() string {
	return fmt.Sprintf("owner=%s group=%s other=%s", p.Owner, p.Group, p.Other)
}

// numeric permission digits decompose against these masks.
// the mapping is canonical: earlier variants labeling mask 4 as delete are not supported.
var digitMasks = []struct {
	mask int
	op   Operation
}{
	{1, Delete},
	{2, Read},
	{4, Update},
}

// ParseDigit decomposes a single permission digit in [0, 7]
// into the operations it grants
func ParseDigit(digit int) Operations {
	ops := NewOperations()
	for _, m := range digitMasks {
		if digit&m.mask != 0 {
			ops.Add(m.op)
		}
	}
	return ops
}

// ParsePermissionNumber decodes a compact numeric permission, e.g. 660,
// into an explicit permission set: the most significant digit rules the owner
// relation, the middle one the group, and the least significant the others.
func ParsePermissionNumber(number int) (PermissionSet, error) {
	if number < 0 || number > 999 {
		return PermissionSet{}, fmt.Errorf("%w: %d", ErrInvalidPermissionEncoding, number)
	}

	set := PermissionSet{}
	for i, r := range []Relation{RelationOther, RelationGroup, RelationOwner} {
		digit := number / pow10(i) % 10
		switch r {
		case RelationOther:
			set.Other = ParseDigit(digit)
		case RelationGroup:
			set.Group = ParseDigit(digit)
		case RelationOwner:
			set.Owner = ParseDigit(digit)
		}
	}
	return set, nil
}

// ParsePermissions decodes a 3-character numeric permission string, e.g. "660".
// Inputs longer than 3 digits or not numeric at all fail with
// ErrInvalidPermissionEncoding.
func ParsePermissions(raw string) (PermissionSet, error) {
	if len(raw) > 3 {
		return PermissionSet{}, fmt.Errorf("%w: %q", ErrInvalidPermissionEncoding, raw)
	}
	number, e := strconv.Atoi(raw)
	if e != nil {
		return PermissionSet{}, fmt.Errorf("%w: %q", ErrInvalidPermissionEncoding, raw)
	}
	return ParsePermissionNumber(number)
}

func pow10(n int) int {
	out := 1
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
