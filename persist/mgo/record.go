package mgo

import (
	"fmt"
	"regexp"
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/go-logr/logr"

	"github.com/supremind/authorize/types"
)

var _ types.RecordStore = (*RecordStore)(nil)

// RecordStore is a types.RecordStore backed by mongodb
type RecordStore struct {
	*collection
}

// NewRecordStore uses the given mongodb collection as backend to store
// resource records
func NewRecordStore(coll *mgo.Collection, opts ...collectionOption) (*RecordStore, error) {
	s := &RecordStore{&collection{
		Collection:   coll,
		log:          logr.Discard(),
		retryTimeout: time.Second,
	}}
	for _, opt := range opts {
		opt(s.collection)
	}

	ss := s.copySession()
	defer ss.closeSession()

	if e := ss.EnsureIndex(mgo.Index{Key: []string{"class"}}); e != nil {
		return nil, e
	}

	return s, nil
}

type recordDO struct {
	ID         string      `bson:"_id"`
	Class      string      `bson:"class"`
	RecordID   string      `bson:"record_id"`
	Owner      string      `bson:"owner,omitempty"`
	Group      string      `bson:"group,omitempty"`
	OwnerPerms pipedList   `bson:"owner_permissions"`
	GroupPerms pipedList   `bson:"group_permissions"`
	OtherPerms pipedList   `bson:"other_permissions"`
	Special    []specialDO `bson:"special,omitempty"`
}

type specialDO struct {
	Actor      string    `bson:"actor,omitempty"`
	Group      string    `bson:"group,omitempty"`
	Operations pipedList `bson:"permissions"`
}

func recordID(class, id string) string {
	return class + "#" + id
}

func fromRecord(r types.Record) *recordDO {
	do := &recordDO{
		ID:         recordID(r.Class, r.ID),
		Class:      r.Class,
		RecordID:   r.ID,
		Owner:      r.Owner,
		Group:      r.Group,
		OwnerPerms: pipedList(r.Permission.Owner),
		GroupPerms: pipedList(r.Permission.Group),
		OtherPerms: pipedList(r.Permission.Other),
	}
	for _, sp := range r.Special {
		do.Special = append(do.Special, specialDO{
			Actor:      sp.ActorID,
			Group:      sp.Group,
			Operations: pipedList(sp.Operations),
		})
	}
	return do
}

func (do *recordDO) asRecord() types.Record {
	r := types.Record{
		ID:    do.RecordID,
		Class: do.Class,
		Owner: do.Owner,
		Group: do.Group,
		Permission: types.PermissionSet{
			Owner: types.Operations(do.OwnerPerms),
			Group: types.Operations(do.GroupPerms),
			Other: types.Operations(do.OtherPerms),
		},
	}
	for _, sp := range do.Special {
		r.Special = append(r.Special, types.SpecialPermission{
			ActorID:    sp.Actor,
			Group:      sp.Group,
			Operations: types.Operations(sp.Operations),
		})
	}
	return r
}

// Save inserts or updates a record
func (s *RecordStore) Save(r types.Record) error {
	ss := s.copySession()
	defer ss.closeSession()

	do := fromRecord(r)
	s.log.V(4).Info("save record", "record", do.ID)

	_, e := ss.UpsertId(do.ID, do)
	return parseMgoError(e)
}

// Remove deletes a record
func (s *RecordStore) Remove(class, id string) error {
	ss := s.copySession()
	defer ss.closeSession()

	s.log.V(4).Info("remove record", "class", class, "id", id)

	if e := ss.RemoveId(recordID(class, id)); e != nil {
		return fmt.Errorf("%w: record %s:%s", parseMgoError(e), class, id)
	}
	return nil
}

// Get returns one record
func (s *RecordStore) Get(class, id string) (types.Record, error) {
	ss := s.copySession()
	defer ss.closeSession()

	var do recordDO
	if e := ss.FindId(recordID(class, id)).One(&do); e != nil {
		return types.Record{}, fmt.Errorf("%w: record %s:%s", parseMgoError(e), class, id)
	}
	return do.asRecord(), nil
}

// Query returns all records of the class matching the predicate
func (s *RecordStore) Query(class string, p types.Predicate) ([]types.Record, error) {
	ss := s.copySession()
	defer ss.closeSession()

	query := bson.M{"class": class}
	if p != nil {
		query = bson.M{"$and": []bson.M{query, toBSON(p)}}
	}
	s.log.V(6).Info("query records", "query", query)

	iter := ss.Find(query).Iter()
	defer iter.Close()

	out := make([]types.Record, 0)
	var do recordDO
	for iter.Next(&do) {
		out = append(out, do.asRecord())
		do = recordDO{}
	}
	if e := iter.Err(); e != nil {
		return nil, e
	}
	return out, nil
}

var permFields = map[types.Relation]string{
	types.RelationOwner: "owner_permissions",
	types.RelationGroup: "group_permissions",
	types.RelationOther: "other_permissions",
}

// matchNothing is a query no document satisfies
var matchNothing = bson.M{"_id": bson.M{"$exists": false}}

// toBSON translates a predicate to its mongodb query form, agreeing
// with the reference types.Match semantics
func toBSON(p types.Predicate) bson.M {
	switch pred := p.(type) {
	case types.And:
		if len(pred) == 0 {
			return bson.M{}
		}
		clauses := make([]bson.M, 0, len(pred))
		for _, sub := range pred {
			clauses = append(clauses, toBSON(sub))
		}
		return bson.M{"$and": clauses}

	case types.Or:
		if len(pred) == 0 {
			return matchNothing
		}
		clauses := make([]bson.M, 0, len(pred))
		for _, sub := range pred {
			clauses = append(clauses, toBSON(sub))
		}
		return bson.M{"$or": clauses}

	case types.HasOperation:
		return bson.M{permFields[pred.Relation]: containsPattern(pred.Operation)}

	case types.OwnerIs:
		if pred.Ident == "" {
			return matchNothing
		}
		return bson.M{"owner": pred.Ident}

	case types.GroupIn:
		if len(pred.Groups) == 0 {
			return matchNothing
		}
		return bson.M{"group": bson.M{"$in": pred.Groups}}
	}

	return matchNothing
}

// containsPattern matches one operation inside a piped list field
func containsPattern(op types.Operation) bson.RegEx {
	return bson.RegEx{Pattern: `(^|\|)` + regexp.QuoteMeta(string(op)) + `(\||$)`}
}
