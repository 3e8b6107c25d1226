package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

var ErrNotFound = errors.New("not found")

// FindByID returns the token if it exists and did not expire.
func (s *Store) FindByID(_ context.Context, id ID) (*Token, error) {
	var token Token
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &token)
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if token.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &token, nil
}

// Insert stores the token. The entry expires in badger together with the token.
func (s *Store) Insert(_ context.Context, token *Token) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(token)
		if err != nil {
			return err
		}
		entry := badger.NewEntry(idKey(token.ID), data)
		if ttl := time.Until(token.Expires); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Store) Delete(_ context.Context, id ID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(idKey(id))
	})
}

func idKey(id ID) []byte {
	return []byte(fmt.Sprintf("tokens/%s", id))
}
