package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) FindByCredentialsID(_ context.Context, credentialsID credentials.ID) (*Profile, error) {
	var profile Profile
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(credentialsID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &profile)
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Store) Insert(_ context.Context, profile *Profile) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		return txn.Set(idKey(profile.CredentialsID), data)
	})
}

// Update applies fn to the stored profile, or to a default one, in a single
// transaction.
func (s *Store) Update(_ context.Context, credentialsID credentials.ID, fn func(*Profile) error) (*Profile, error) {
	var profile *Profile
	if err := s.db.Update(func(txn *badger.Txn) error {
		profile = Default(credentialsID)
		item, err := txn.Get(idKey(credentialsID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, profile)
			}); err != nil {
				return err
			}
		}
		if err := fn(profile); err != nil {
			return err
		}
		data, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		return txn.Set(idKey(credentialsID), data)
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func idKey(credentialsID credentials.ID) []byte {
	return []byte(fmt.Sprintf("profiles/%s", credentialsID))
}
