package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/profiles"
)

type migration struct {
	name string
	run  func(context.Context, *slog.Logger, *badger.DB) error
}

// migrations are applied in order, the index + 1 is the schema version.
var migrations = []migration{
	{name: "create missing profiles", run: createMissingProfiles},
}

var versionKey = []byte("migrations/version")

// Run applies migrations newer than the stored schema version.
func Run(ctx context.Context, logger *slog.Logger, db *badger.DB) error {
	version, err := getVersion(db)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		m := migrations[i]
		if err := m.run(ctx, logger, db); err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		if err := setVersion(db, i+1); err != nil {
			return fmt.Errorf("set version: %w", err)
		}
		logger.Info("migration applied", "name", m.name, "version", i+1)
	}
	return nil
}

func getVersion(db *badger.DB) (int, error) {
	var version int
	if err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			version, err = strconv.Atoi(string(value))
			return err
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func setVersion(db *badger.DB, version int) error {
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(versionKey, []byte(strconv.Itoa(version)))
	})
}

func createMissingProfiles(ctx context.Context, logger *slog.Logger, db *badger.DB) error {
	creds, err := credentials.NewStore(db).List(ctx)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}
	profilesService := profiles.NewService(profiles.NewStore(db))
	for _, c := range creds {
		created, err := profilesService.EnsureExists(ctx, c.ID)
		if err != nil {
			return err
		}
		if created {
			logger.Info("profile created", "credentials_id", c.ID)
		}
	}
	return nil
}
