// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package pendingdb

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
)

// keyPrefix defines prefix of pending etching keys.
var keyPrefix = []byte("pending/")

// ensures that DB implements etching.Store.
var _ etching.Store = (*DB)(nil)

// DB is a leveldb backed store of pending etchings.
// Writes are check-and-set under the mutex, leveldb holds the directory lock across processes.
type DB struct {
	mu     sync.Mutex
	db     *leveldb.DB
	claims map[string]struct{}
}

// Open opens the store in the directory, creating it if missing.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

// OpenInMemory opens the store kept in memory.
func OpenInMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

// New is a constructor for DB.
func New(db *leveldb.DB) *DB {
	return &DB{
		db:     db,
		claims: make(map[string]struct{}),
	}
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put creates the record or updates the one of the same request.
func (d *DB) Put(rec *etching.PendingEtching) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := rec.Name()
	existing, err := d.get(name)
	switch {
	case err == nil:
		if existing.RequestID != rec.RequestID {
			return &etching.ValidationError{Kind: etching.DuplicatePending, Rune: name}
		}
	case !errors.Is(err, etching.ErrNoPendingEtching):
		return err
	}

	return d.put(rec)
}

// CompareAndSwap replaces the record of the same request if its state equals expected.
func (d *DB) CompareAndSwap(name string, expected etching.State, rec *etching.PendingEtching) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rec.Name() != name {
		return errors.New("record name does not match the key")
	}

	existing, err := d.get(name)
	if err != nil {
		return err
	}

	if existing.RequestID != rec.RequestID || existing.State != expected {
		return etching.ErrStateConflict
	}

	return d.put(rec)
}

// Get returns record by name.
func (d *DB) Get(name string) (*etching.PendingEtching, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.get(name)
}

// Clear removes record by name.
func (d *DB) Clear(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ok, err := d.db.Has(key(name), nil)
	if err != nil {
		return err
	}
	if !ok {
		return etching.ErrNoPendingEtching
	}

	return d.db.Delete(key(name), &opt.WriteOptions{Sync: true})
}

// List returns all records ordered by name.
func (d *DB) List() ([]*etching.PendingEtching, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	it := d.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()

	var records []*etching.PendingEtching
	for it.Next() {
		name := string(it.Key()[len(keyPrefix):])

		rec, err := decode(name, it.Value())
		if err != nil {
			return nil, &etching.StateError{Kind: etching.CorruptPendingRecord, Rune: name, Err: err}
		}

		records = append(records, rec)
	}

	return records, it.Error()
}

// Claim marks the name as processed by the caller until release is called.
func (d *DB) Claim(name string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.claims[name]; ok {
		return nil, etching.ErrClaimed
	}

	d.claims[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()

			delete(d.claims, name)
		})
	}, nil
}

// get returns record by name, must be called under the mutex.
func (d *DB) get(name string) (*etching.PendingEtching, error) {
	value, err := d.db.Get(key(name), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, etching.ErrNoPendingEtching
		}

		return nil, err
	}

	rec, err := decode(name, value)
	if err != nil {
		return nil, &etching.StateError{Kind: etching.CorruptPendingRecord, Rune: name, Err: err}
	}

	return rec, nil
}

// put writes the record, must be called under the mutex.
func (d *DB) put(rec *etching.PendingEtching) error {
	value, err := encode(rec)
	if err != nil {
		return err
	}

	return d.db.Put(key(rec.Name()), value, &opt.WriteOptions{Sync: true})
}

// key returns database key of the rune name.
func key(name string) []byte {
	return append(append([]byte{}, keyPrefix...), name...)
}
