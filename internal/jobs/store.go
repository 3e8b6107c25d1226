package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
)

var ErrNotFound = errors.New("not found")

// Filter selects jobs in listings. A job is listed when all filters match.
type Filter func(*Job) bool

func ByStatus(status ...Status) Filter {
	filter := make(map[Status]bool, len(status))
	for _, s := range status {
		filter[s] = true
	}
	return func(job *Job) bool {
		return filter[job.Status]
	}
}

// Store keeps jobs under jobs/<id> with an index of the owning account under
// jobs-by-credentials/<credentials id>/<id>.
type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) InsertJob(_ context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(idKey(job.ID), data); err != nil {
			return err
		}
		if owner := job.CredentialsID(); owner != "" {
			return txn.Set(credentialsKey(owner, job.ID), nil)
		}
		return nil
	})
}

func (s *Store) FindByID(_ context.Context, id ID) (*Job, error) {
	var job *Job
	if err := s.db.View(func(txn *badger.Txn) error {
		var err error
		job, err = getJob(txn, id)
		return err
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func getJob(txn *badger.Txn, id ID) (*Job, error) {
	item, err := txn.Get(idKey(id))
	if err != nil {
		return nil, err
	}
	job := &Job{}
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, job)
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return job, nil
}

func matches(job *Job, filters []Filter) bool {
	for _, filter := range filters {
		if !filter(job) {
			return false
		}
	}
	return true
}

func (s *Store) ListJobs(_ context.Context, filters ...Filter) ([]*Job, error) {
	var jobs []*Job
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("jobs/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			job := &Job{}
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, job)
			}); err != nil {
				return fmt.Errorf("%s: %w", it.Item().Key(), err)
			}
			if matches(job, filters) {
				jobs = append(jobs, job)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListByCredentialsID lists jobs of a single account through the index.
func (s *Store) ListByCredentialsID(_ context.Context, credentialsID credentials.ID, filters ...Filter) ([]*Job, error) {
	var jobs []*Job
	if err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := credentialsPrefix(credentialsID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := ID(bytes.TrimPrefix(it.Item().Key(), prefix))
			job, err := getJob(txn, id)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			} else if err != nil {
				return err
			}
			if matches(job, filters) {
				jobs = append(jobs, job)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) DeleteJob(_ context.Context, job *Job) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if owner := job.CredentialsID(); owner != "" {
			if err := txn.Delete(credentialsKey(owner, job.ID)); err != nil {
				return err
			}
		}
		return txn.Delete(idKey(job.ID))
	})
}

// Prune deletes succeeded jobs scheduled before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	jobs, err := s.ListJobs(ctx, ByStatus(StatusSucceded), func(job *Job) bool {
		return job.Time.Before(cutoff)
	})
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		if err := s.DeleteJob(ctx, job); err != nil {
			return 0, fmt.Errorf("delete %s: %w", job.ID, err)
		}
	}
	return len(jobs), nil
}

func idKey(id ID) []byte {
	return []byte(fmt.Sprintf("jobs/%s", id))
}

func credentialsPrefix(credentialsID credentials.ID) []byte {
	return []byte(fmt.Sprintf("jobs-by-credentials/%s/", credentialsID))
}

func credentialsKey(credentialsID credentials.ID, id ID) []byte {
	return append(credentialsPrefix(credentialsID), id...)
}
