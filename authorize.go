// Package authorize decides, for a given actor and a protected resource,
// whether a requested operation is permitted. It combines discretionary
// owner/group/other permission sets attached to resource instances,
// role-based allowances granting operations on resource classes, and
// group-based restrictions explicitly revoking them.
package authorize

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/supremind/authorize/internal/instance"
	"github.com/supremind/authorize/internal/policy"
	"github.com/supremind/authorize/internal/resolver"
	"github.com/supremind/authorize/types"
)

// Authorize is the authorization plugin: it builds guards bound to
// requested checks and carries the process-wide configuration and
// registries they share
type Authorize struct {
	provider types.ActorProvider
	log      logr.Logger
	keyOf    types.KeyFunc

	defaultPermissions  types.PermissionSet
	defaultOperations   types.Operations
	defaultAllowances   types.Operations
	defaultRestrictions types.Operations
	anonymous           bool
	denial              error

	resolver  *resolver.Resolver
	policy    *policy.Evaluator
	instance  *instance.Evaluator
	guards    *guardRegistry
	classes   *classRegistry
	store     types.RecordStore
	directory *resolver.PolicyDirectory
}

// New creates an Authorize plugin
func New(ctx context.Context, opts ...Option) (*Authorize, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log == nil {
		l := stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
		cfg.log = &l
	}
	if cfg.provider == nil {
		cfg.provider = func() types.Actor { return nil }
	}
	if cfg.keyOf == nil {
		cfg.keyOf = types.ClassKeyFunc(types.KeyTable)
	}
	if cfg.defaultPermissions == nil {
		cfg.defaultPermissions = &types.PermissionSet{
			Owner: types.NewOperations(types.Delete, types.Read, types.Update),
			Group: types.NewOperations(types.Read, types.Update),
			Other: types.NewOperations(types.Read),
		}
	}
	if cfg.defaultOperations == nil {
		cfg.defaultOperations = types.DefaultOperations()
	}
	if cfg.defaultAllowances == nil {
		cfg.defaultAllowances = cfg.defaultOperations.Clone()
	}
	if cfg.defaultRestrictions == nil {
		cfg.defaultRestrictions = types.NewOperations()
	}
	if cfg.denial == nil {
		cfg.denial = types.ErrUnauthorized
	}

	a := &Authorize{
		provider:            cfg.provider,
		log:                 *cfg.log,
		keyOf:               cfg.keyOf,
		defaultPermissions:  *cfg.defaultPermissions,
		defaultOperations:   cfg.defaultOperations,
		defaultAllowances:   cfg.defaultAllowances,
		defaultRestrictions: cfg.defaultRestrictions,
		anonymous:           cfg.anonymous,
		denial:              cfg.denial,
		guards:              newGuardRegistry(),
		classes:             newClassRegistry(cfg.keyOf),
		store:               cfg.store,
	}

	if cfg.policies != nil {
		dir, e := resolver.NewPolicyDirectory(ctx, cfg.policies, a.log.WithName("directory"))
		if e != nil {
			return nil, fmt.Errorf("init policy directory failed: %w", e)
		}
		a.directory = dir
	}

	a.resolver = resolver.New(a.directory, a.log.WithName("resolver"))
	a.policy = policy.New(a.resolver, a.defaultAllowances, a.log.WithName("policy"))
	a.instance = instance.New(a.resolver, a.log.WithName("instance"))

	a.classes.register(cfg.resources...)

	return a, nil
}

// Can builds a guard requiring the given operations on every checked target
func (a *Authorize) Can(ops ...types.Operation) Guard {
	return Guard{a: a, operations: types.NewOperations(ops...)}
}

// Read builds a guard requiring the read operation
func (a *Authorize) Read() Guard { return a.Can(types.Read) }

// Update builds a guard requiring the update operation
func (a *Authorize) Update() Guard { return a.Can(types.Update) }

// Delete builds a guard requiring the delete operation
func (a *Authorize) Delete() Guard { return a.Can(types.Delete) }

// Create builds a guard requiring creation rights on the given resource
// classes; a class may be a type prototype or a class key string
func (a *Authorize) Create(classes ...interface{}) Guard {
	g := Guard{a: a, creates: make(stringSet, len(classes))}
	for _, c := range classes {
		g.creates.add(a.keyOf(c))
	}
	return g
}

// HasRole builds a guard requiring the actor to hold one of the roles
func (a *Authorize) HasRole(names ...string) Guard {
	return Guard{a: a, roles: newStringSet(names...)}
}

// InGroup builds a guard requiring the actor to belong to one of the groups
func (a *Authorize) InGroup(names ...string) Guard {
	return Guard{a: a, groups: newStringSet(names...)}
}

// RegisterResources adds resource prototypes to the class registry,
// making their classes known to policy defaults
func (a *Authorize) RegisterResources(protos ...interface{}) {
	a.classes.register(protos...)
}

// ClassKey derives the resource class key of a value with the configured
// strategy; strings pass through unchanged
func (a *Authorize) ClassKey(v interface{}) string {
	return a.keyOf(v)
}

// DefaultPermissions returns a copy of the configured default permission
// set for new resources
func (a *Authorize) DefaultPermissions() types.PermissionSet {
	return types.PermissionSet{
		Owner: a.defaultPermissions.Owner.Clone(),
		Group: a.defaultPermissions.Group.Clone(),
		Other: a.defaultPermissions.Other.Clone(),
	}
}

// DefaultAllowances materializes the default allowance map for a new
// role: every known resource class mapped to the default allowance set
func (a *Authorize) DefaultAllowances() types.Allowances {
	out := make(types.Allowances)
	for _, key := range a.classes.classKeys() {
		out[key] = a.defaultAllowances.Clone()
	}
	return out
}

// DefaultRestrictions materializes the default restriction map for a new
// group: every known resource class mapped to the default restriction set
func (a *Authorize) DefaultRestrictions() types.Restrictions {
	out := make(types.Restrictions)
	for _, key := range a.classes.classKeys() {
		out[key] = a.defaultRestrictions.Clone()
	}
	return out
}

// DenyAllRestrictions materializes the deny-all sentinel: every known
// resource class mapped to all default operations
func (a *Authorize) DenyAllRestrictions() types.Restrictions {
	out := make(types.Restrictions)
	for _, key := range a.classes.classKeys() {
		out[key] = a.defaultOperations.Clone()
	}
	return out
}

func (a *Authorize) currentActor() types.Actor {
	return a.provider()
}

// Config works together with Option to control the initialization of the
// plugin
type Config struct {
	provider            types.ActorProvider
	log                 *logr.Logger
	keyOf               types.KeyFunc
	defaultPermissions  *types.PermissionSet
	defaultOperations   types.Operations
	defaultAllowances   types.Operations
	defaultRestrictions types.Operations
	anonymous           bool
	denial              error
	store               types.RecordStore
	policies            types.PolicyStore
	resources           []interface{}
}

// Option controls how to init the plugin
type Option func(*Config)

// WithActorProvider sets the accessor resolving the current actor on
// every evaluation; without it every evaluation is anonymous
func WithActorProvider(p types.ActorProvider) Option {
	return func(cfg *Config) { cfg.provider = p }
}

// WithLogger sets logger for all components
func WithLogger(l logr.Logger) Option {
	return func(cfg *Config) { cfg.log = &l }
}

// WithKeyStrategy sets how resource class keys are derived from types
func WithKeyStrategy(s types.KeyStrategy) Option {
	return func(cfg *Config) { cfg.keyOf = types.ClassKeyFunc(s) }
}

// WithKeyFunc sets a custom class key derivation
func WithKeyFunc(f types.KeyFunc) Option {
	return func(cfg *Config) { cfg.keyOf = f }
}

// WithDefaultPermissions sets the default permission set for new resources
func WithDefaultPermissions(p types.PermissionSet) Option {
	return func(cfg *Config) { cfg.defaultPermissions = &p }
}

// WithDefaultOperations sets the known operation vocabulary used by
// policy defaults and the deny-all sentinel
func WithDefaultOperations(ops ...types.Operation) Option {
	return func(cfg *Config) { cfg.defaultOperations = types.NewOperations(ops...) }
}

// WithDefaultAllowances sets the fallback allowance set for class keys
// absent from a credential's allowance map
func WithDefaultAllowances(ops ...types.Operation) Option {
	return func(cfg *Config) { cfg.defaultAllowances = types.NewOperations(ops...) }
}

// WithDefaultRestrictions sets the default restriction set materialized
// for new groups
func WithDefaultRestrictions(ops ...types.Operation) Option {
	return func(cfg *Config) { cfg.defaultRestrictions = types.NewOperations(ops...) }
}

// WithAnonymousActions allows evaluations without a current actor to
// proceed to the permission checks instead of being denied outright
func WithAnonymousActions(allow bool) Option {
	return func(cfg *Config) { cfg.anonymous = allow }
}

// WithDenialError sets the error returned by protected actions on denial
func WithDenialError(err error) Option {
	return func(cfg *Config) { cfg.denial = err }
}

// WithRecordStore sets the record store queried by AuthorizedRecords
func WithRecordStore(s types.RecordStore) Option {
	return func(cfg *Config) { cfg.store = s }
}

// WithPolicyStore sets the store credential policies are mirrored from,
// for actors referencing roles and groups by name
func WithPolicyStore(s types.PolicyStore) Option {
	return func(cfg *Config) { cfg.policies = s }
}

// WithResources registers resource prototypes with the class registry
func WithResources(protos ...interface{}) Option {
	return func(cfg *Config) { cfg.resources = append(cfg.resources, protos...) }
}
