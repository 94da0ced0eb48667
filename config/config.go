// Package config loads the recognized plugin options from a YAML file
// layered under AUTHORIZE_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/supremind/authorize"
	"github.com/supremind/authorize/types"
)

// EnvPrefix marks the environment variables overriding file settings:
// AUTHORIZE_MODEL_PARSER overrides model_parser, and so on.
const EnvPrefix = "AUTHORIZE_"

// recognized keys
const (
	keyDefaultPermissions  = "default_permissions"
	keyDefaultOperations   = "default_operations"
	keyDefaultAllowances   = "default_allowances"
	keyDefaultRestrictions = "default_restrictions"
	keyModelParser         = "model_parser"
	keyAllowAnonymous      = "allow_anonymous_actions"
)

// Load reads plugin options from the given YAML file, if path is not
// empty, and from the environment. Environment values win.
//
// Shape errors fail fast here, at configuration time: allowance and
// restriction defaults must be operation lists, the permission default
// must be a relation-to-operations map or a numeric encoding.
func Load(path string) ([]authorize.Option, error) {
	k := koanf.New(".")

	if path != "" {
		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, e)
		}
	}

	if e := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); e != nil {
		return nil, fmt.Errorf("load environment: %w", e)
	}

	return options(k)
}

func envTransform(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
}

func options(k *koanf.Koanf) ([]authorize.Option, error) {
	opts := make([]authorize.Option, 0, 6)

	if k.Exists(keyDefaultPermissions) {
		perms, e := permissionSet(k)
		if e != nil {
			return nil, e
		}
		opts = append(opts, authorize.WithDefaultPermissions(perms))
	}

	defaultOps := types.DefaultOperations()
	if k.Exists(keyDefaultOperations) {
		defaultOps = types.NewOperations(operations(k.Strings(keyDefaultOperations))...)
		opts = append(opts, authorize.WithDefaultOperations(defaultOps.Split()...))
	}

	if k.Exists(keyDefaultAllowances) {
		ops, wildcard, e := operationList(k, keyDefaultAllowances, types.ErrInvalidAllowanceShape)
		if e != nil {
			return nil, e
		}
		// the "*" sentinel keeps the built-in default: allow all known operations
		if !wildcard {
			opts = append(opts, authorize.WithDefaultAllowances(ops...))
		}
	}

	if k.Exists(keyDefaultRestrictions) {
		ops, wildcard, e := operationList(k, keyDefaultRestrictions, types.ErrInvalidRestrictionShape)
		if e != nil {
			return nil, e
		}
		// the "*" sentinel is deny-all: restrict every known operation
		if wildcard {
			opts = append(opts, authorize.WithDefaultRestrictions(defaultOps.Split()...))
		} else {
			opts = append(opts, authorize.WithDefaultRestrictions(ops...))
		}
	}

	if k.Exists(keyModelParser) {
		strategy, e := keyStrategy(k.String(keyModelParser))
		if e != nil {
			return nil, e
		}
		opts = append(opts, authorize.WithKeyStrategy(strategy))
	}

	if k.Exists(keyAllowAnonymous) {
		opts = append(opts, authorize.WithAnonymousActions(k.Bool(keyAllowAnonymous)))
	}

	return opts, nil
}

// permissionSet accepts either a relation-to-operations map:
//
//	default_permissions:
//	  owner: [delete, read, update]
//	  group: [read, update]
//	  other: [read]
//
// or a compact numeric encoding:
//
//	default_permissions: "664"
func permissionSet(k *koanf.Koanf) (types.PermissionSet, error) {
	if raw := k.String(keyDefaultPermissions); raw != "" {
		return types.ParsePermissions(raw)
	}

	set := types.PermissionSet{}
	for _, r := range types.Relations {
		key := keyDefaultPermissions + "." + string(r)
		if !k.Exists(key) {
			continue
		}
		ops := types.NewOperations(operations(k.Strings(key))...)
		switch r {
		case types.RelationOwner:
			set.Owner = ops
		case types.RelationGroup:
			set.Group = ops
		case types.RelationOther:
			set.Other = ops
		}
	}
	return set, nil
}

func operationList(k *koanf.Koanf, key string, shapeErr error) ([]types.Operation, bool, error) {
	if m := k.Get(key); m != nil {
		if _, ok := m.(map[string]interface{}); ok {
			return nil, false, fmt.Errorf("%w: %s must be an operation list or the %q sentinel, not a map", shapeErr, key, types.AnyClass)
		}
	}

	names := k.Strings(key)
	if len(names) == 0 {
		if raw := k.String(key); raw != "" {
			if raw == types.AnyClass {
				return nil, true, nil
			}
			return nil, false, fmt.Errorf("%w: %s: %q", shapeErr, key, raw)
		}
	}
	return operations(names), false, nil
}

func operations(names []string) []types.Operation {
	ops := make([]types.Operation, 0, len(names))
	for _, n := range names {
		ops = append(ops, types.Operation(n))
	}
	return ops
}

func keyStrategy(name string) (types.KeyStrategy, error) {
	switch types.KeyStrategy(name) {
	case types.KeyRaw, types.KeyLower, types.KeySnake, types.KeyTable:
		return types.KeyStrategy(name), nil
	}
	return "", fmt.Errorf("unknown model parser: %q", name)
}
