// Package configstore persists named config.Document configurations in
// CouchDB, so a running deployment's net/controller configuration can be
// pushed and pulled by name rather than always read from a local file.
// Adapted from the teacher's couch/service.go generic CRUD shape, narrowed
// from its four-type-parameter petri.Service interface to the one concrete
// document this module stores.
package configstore

import (
	"context"
	"fmt"

	_ "github.com/go-kivik/couchdb/v3"
	"github.com/go-kivik/kivik/v3"

	"github.com/bnetrun/bnet/config"
)

// Store is a CouchDB-backed collection of named configurations, keyed by
// document id. Unlike the teacher's Service, there is exactly one document
// shape here (config.Document), so no generic type parameters are needed.
type Store struct {
	cancel func()
	db     *kivik.DB
	revMap map[string]string
}

// record is the on-disk envelope: CouchDB's _id/_rev fields plus the
// config document itself.
type record struct {
	ID     string          `json:"_id"`
	Rev    string          `json:"_rev,omitempty"`
	Config config.Document `json:"config"`
}

// Open connects to the CouchDB server at uri and ensures database dbName
// exists, creating it if absent.
func Open(uri, dbName string) (*Store, error) {
	client, err := kivik.New("couch", uri)
	if err != nil {
		return nil, fmt.Errorf("configstore: connect: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	dbs, err := client.AllDBs(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("configstore: list databases: %w", err)
	}
	found := false
	for _, db := range dbs {
		if db == dbName {
			found = true
			break
		}
	}
	if !found {
		if err := client.CreateDB(ctx, dbName); err != nil {
			cancel()
			return nil, fmt.Errorf("configstore: create database: %w", err)
		}
	}
	return &Store{
		cancel: cancel,
		db:     client.DB(ctx, dbName),
		revMap: make(map[string]string),
	}, nil
}

func (s *Store) Close() error {
	s.cancel()
	return nil
}

// Put stores doc under name, creating it or updating the existing revision.
func (s *Store) Put(ctx context.Context, name string, doc config.Document) error {
	rec := record{ID: name, Rev: s.revMap[name], Config: doc}
	rev, err := s.db.Put(ctx, name, rec)
	if err != nil {
		return fmt.Errorf("configstore: put %q: %w", name, err)
	}
	s.revMap[name] = rev
	return nil
}

// Get retrieves the configuration stored under name.
func (s *Store) Get(ctx context.Context, name string) (config.Document, error) {
	var rec record
	row := s.db.Get(ctx, name)
	if err := row.ScanDoc(&rec); err != nil {
		return config.Document{}, fmt.Errorf("configstore: get %q: %w", name, err)
	}
	s.revMap[name] = row.Rev
	return rec.Config, nil
}

// List returns the names of every stored configuration.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.AllDocs(ctx, kivik.Options{})
	if err != nil {
		return nil, fmt.Errorf("configstore: list: %w", err)
	}
	var names []string
	for rows.Next() {
		var rec record
		if err := rows.ScanDoc(&rec); err != nil {
			return nil, fmt.Errorf("configstore: list: %w", err)
		}
		names = append(names, rec.ID)
	}
	return names, nil
}

// Delete removes the configuration stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	rev, ok := s.revMap[name]
	if !ok {
		row := s.db.Get(ctx, name)
		var rec record
		if err := row.ScanDoc(&rec); err != nil {
			return fmt.Errorf("configstore: delete %q: %w", name, err)
		}
		rev = row.Rev
	}
	if _, err := s.db.Delete(ctx, name, rev); err != nil {
		return fmt.Errorf("configstore: delete %q: %w", name, err)
	}
	delete(s.revMap, name)
	return nil
}
