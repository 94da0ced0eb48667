package types

import "errors"

// exported errors
var (
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInvalidPermissionEncoding = errors.New("invalid permission encoding")
	ErrInvalidAllowanceShape     = errors.New("invalid allowances, a class key to operations map is required")
	ErrInvalidRestrictionShape   = errors.New("invalid restrictions, a class key to operations map is required")
	ErrNotFound                  = errors.New("not found")
	ErrUnsupportedChange         = errors.New("policy store changed in an unsupported way")
)
