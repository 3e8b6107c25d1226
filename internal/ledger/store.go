package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

// Load returns a ledger with all records of the account between from and to,
// both inclusive.
func (s *Store) Load(_ context.Context, credentialsID credentials.ID, from, to DayKey) (*Ledger, error) {
	l := New()
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := accountPrefix(credentialsID)
		last := dayKey(credentialsID, to)
		for it.Seek(dayKey(credentialsID, from)); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), last) > 0 {
				break
			}
			day, err := parseDayKey(item.Key())
			if err != nil {
				return err
			}
			var record DayRecord
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			}); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			l.Put(day, record)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadAll returns a ledger with every record of the account.
func (s *Store) LoadAll(ctx context.Context, credentialsID credentials.ID) (*Ledger, error) {
	return s.Load(ctx, credentialsID, DayKey{Day: 0, Month: 0, Year: 0}, DayKey{Day: 99, Month: 98, Year: 9999})
}

// Apply loads the record of day, passes it to fn inside a ledger and writes the
// result back in the same transaction. Records left empty are removed.
func (s *Store) Apply(_ context.Context, credentialsID credentials.ID, day DayKey, fn func(*Ledger) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := dayKey(credentialsID, day)
		l := New()
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var record DayRecord
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			}); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			l.Put(day, record)
		}

		if err := fn(l); err != nil {
			return err
		}

		record := l.Record(day)
		if record.IsEmpty() {
			return txn.Delete(key)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func accountPrefix(credentialsID credentials.ID) []byte {
	return []byte(fmt.Sprintf("days/%s/", credentialsID))
}

func dayKey(credentialsID credentials.ID, day DayKey) []byte {
	return []byte(fmt.Sprintf("days/%s/%04d/%02d/%02d", credentialsID, day.Year, day.Month+1, day.Day))
}

func parseDayKey(key []byte) (DayKey, error) {
	parts := bytes.Split(key, []byte("/"))
	if len(parts) != 5 {
		return DayKey{}, fmt.Errorf("malformed day key %q", key)
	}
	year, err := strconv.Atoi(string(parts[2]))
	if err != nil {
		return DayKey{}, fmt.Errorf("malformed day key %q: %w", key, err)
	}
	month, err := strconv.Atoi(string(parts[3]))
	if err != nil {
		return DayKey{}, fmt.Errorf("malformed day key %q: %w", key, err)
	}
	day, err := strconv.Atoi(string(parts[4]))
	if err != nil {
		return DayKey{}, fmt.Errorf("malformed day key %q: %w", key, err)
	}
	return DayKey{Day: day, Month: month - 1, Year: year}, nil
}
