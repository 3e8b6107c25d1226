package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrLoginTaken = errors.New("login is already taken")
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) FindByID(_ context.Context, id ID) (*Credentials, error) {
	var credentials Credentials
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &credentials)
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &credentials, nil
}

func (s *Store) FindByLogin(_ context.Context, login string) (*Credentials, error) {
	var credentials Credentials
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(loginKey(NormalizeLogin(login)))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			item, err := txn.Get(idKey(ID(value)))
			if err != nil {
				return err
			}
			return item.Value(func(value []byte) error {
				return json.Unmarshal(value, &credentials)
			})
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &credentials, nil
}

// Insert stores credentials and indexes them by login. It fails with
// ErrLoginTaken if the login belongs to someone else.
func (s *Store) Insert(_ context.Context, credentials *Credentials) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(loginKey(credentials.Login))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(value []byte) error {
				if ID(value) != credentials.ID {
					return ErrLoginTaken
				}
				return nil
			}); err != nil {
				return err
			}
		}
		data, err := json.Marshal(credentials)
		if err != nil {
			return err
		}
		if err := txn.Set(idKey(credentials.ID), data); err != nil {
			return err
		}
		if err := txn.Set(loginKey(credentials.Login), []byte(credentials.ID)); err != nil {
			return err
		}
		return nil
	})
}

// List returns all stored credentials.
func (s *Store) List(_ context.Context) ([]*Credentials, error) {
	var out []*Credentials
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("credentials/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(value []byte) error {
				credentials := &Credentials{}
				if err := json.Unmarshal(value, credentials); err != nil {
					return err
				}
				out = append(out, credentials)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func idKey(id ID) []byte {
	return []byte(fmt.Sprintf("credentials/%s", id))
}

func loginKey(login string) []byte {
	return []byte(fmt.Sprintf("logins/%s", login))
}
