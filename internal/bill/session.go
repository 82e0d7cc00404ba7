package bill

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const sessionBucketName = "session"

// Session record keys.
const (
	SessionUserKey = "user"
	SessionJWTKey  = "jwt"
)

// SessionStore is the synchronous key/value record store that survives
// across portal runs. The pipelines only ever read it; login (outside
// this module) writes it.
type SessionStore interface {
	// Get returns the record under key, or "" when absent.
	Get(key string) (string, error)

	// Set writes a record.
	Set(key, value string) error

	// Delete removes a record.
	Delete(key string) error

	// Close closes the store.
	Close() error
}

// CurrentUser reads and decodes the logged-in user's identity from the
// session store.
func CurrentUser(store SessionStore) (*Session, error) {
	raw, err := store.Get(SessionUserKey)
	if err != nil {
		return nil, fmt.Errorf("reading user session: %w", err)
	}
	if raw == "" {
		return nil, fmt.Errorf("no user session")
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decoding user session: %w", err)
	}
	return &session, nil
}

// BoltSession implements SessionStore using BoltDB.
type BoltSession struct {
	db *bbolt.DB
}

// NewBoltSession opens (or creates) the session database at path.
func NewBoltSession(path string) (*BoltSession, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}

	return &BoltSession{db: db}, nil
}

// Get returns the record under key, or "" when absent.
func (b *BoltSession) Get(key string) (string, error) {
	var value string
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(sessionBucketName)).Get([]byte(key))
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes a record.
func (b *BoltSession) Set(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucketName)).Put([]byte(key), []byte(value))
	})
}

// Delete removes a record.
func (b *BoltSession) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucketName)).Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (b *BoltSession) Close() error {
	return b.db.Close()
}
