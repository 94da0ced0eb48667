// Package mgo implements record and policy stores backed by MongoDB.
package mgo

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/go-logr/logr"

	"github.com/supremind/authorize/types"
)

type collection struct {
	*mgo.Collection
	log          logr.Logger
	retryTimeout time.Duration
}

func (c *collection) copySession() *collection {
	db := c.Database
	return &collection{
		Collection:   db.Session.Copy().DB(db.Name).C(c.Name),
		log:          c.log,
		retryTimeout: c.retryTimeout,
	}
}

func (c *collection) closeSession() {
	c.Database.Session.Close()
}

func (c *collection) connectToWatch(token *bson.Raw) (*mgo.ChangeStream, func(), error) {
	ss := c.copySession()
	cs, e := ss.Watch(nil, mgo.ChangeStreamOptions{
		FullDocument: mgo.UpdateLookup,
		ResumeAfter:  token,
	})
	if e != nil {
		ss.closeSession()
		return nil, nil, e
	}

	return cs, func() {
		cs.Close()
		ss.closeSession()
	}, nil
}

func parseMgoError(e error) error {
	if e == mgo.ErrNotFound {
		return types.ErrNotFound
	}
	return e
}

type changeStreamOperationType string

const (
	insert  changeStreamOperationType = "insert"
	delete  changeStreamOperationType = "delete"
	update  changeStreamOperationType = "update"
	replace changeStreamOperationType = "replace"
)

type collectionOption func(*collection)

// WithLogger sets logger for a store
func WithLogger(log logr.Logger) collectionOption {
	return func(c *collection) {
		c.log = log
	}
}

// SetRetryTimeout sets how long a store waits before reconnecting a
// broken change stream
func SetRetryTimeout(d time.Duration) collectionOption {
	return func(c *collection) {
		c.retryTimeout = d
	}
}

// pipedList persists an operation set through the scalar list codec:
// operations joined by the reserved separator, empty sets as the null
// sentinel
type pipedList types.Operations

func (l pipedList) GetBSON() (interface{}, error) {
	s := types.EncodeOperations(types.Operations(l))
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func (l *pipedList) SetBSON(raw bson.Raw) error {
	var s string
	if e := raw.Unmarshal(&s); e != nil {
		*l = pipedList(types.NewOperations())
		return nil
	}
	*l = pipedList(types.DecodeOperations(s))
	return nil
}
