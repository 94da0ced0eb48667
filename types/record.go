package types

// Record is a generic resource instance as supplied by a record store.
// It exposes every resource capability, so it can be fed to instance
// permission checks directly.
type Record struct {
	ID         string
	Class      string
	Owner      string
	Group      string
	Permission PermissionSet
	Special    []SpecialPermission
}

// OwnerIdent implements Owned; an empty ident means the record has no owner
func (r Record) OwnerIdent() string { return r.Owner }

// GroupName implements Grouped; an empty name means the record has no group
func (r Record) GroupName() string { return r.Group }

// Permissions implements Permissioned
func (r Record) Permissions() PermissionSet { return r.Permission }

// SpecialPermissions implements SpecialPermissioned
func (r Record) SpecialPermissions() []SpecialPermission { return r.Special }

// TableName implements Tabler: a record's class is its table, so the
// table key strategy derives the right class key from store-loaded records
func (r Record) TableName() string { return r.Class }

func (r Record) String() string {
	return r.Class + ":" + r.ID
}
