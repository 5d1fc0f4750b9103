package service

import (
	"errors"
	"fmt"
	"io"
	"os"

	"postboard/app/config"
	"postboard/app/repositories"
	"postboard/app/services"
	"postboard/app/toggle"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

var ErrNoDatabase = errors.New("no toggle-state database")

// OpenDB opens the badger database at path, or an in-memory one when path is empty.
func OpenDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return db, nil
}

// NewStoreFactory returns the per-session toggle store the configuration
// selects. The returned database is nil for the memory store.
func NewStoreFactory(cfg config.Config) (services.StoreFactory, *badger.DB, error) {
	if cfg.StateStore != "badger" {
		return func(string) (toggle.StateStore, error) {
			return repositories.NewMemoryToggleRepository(), nil
		}, nil, nil
	}

	db, err := OpenDB(cfg.BadgerPath)
	if err != nil {
		return nil, nil, err
	}
	// Sessions live only in memory, so scopes left by a previous run are unreachable.
	if err := db.DropPrefix([]byte(repositories.ToggleKeyPrefix)); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("drop stale toggle state: %w", err)
	}
	log.Infof("[server] toggle state in badger (%s)", describePath(cfg.BadgerPath))

	return func(sessionID string) (toggle.StateStore, error) {
		return repositories.NewBadgerToggleRepository(db, sessionID)
	}, db, nil
}

// Backup writes a full backup of the database at path to w.
func Backup(path string, w io.Writer) (uint64, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) || path == "" {
		return 0, ErrNoDatabase
	}

	db, err := OpenDB(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return db.Backup(w, 0)
}

// Restore loads a backup into the database at path, creating it if needed.
func Restore(path string, r io.Reader) error {
	if path == "" {
		return ErrNoDatabase
	}

	db, err := OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Load(r, 16); err != nil {
		return fmt.Errorf("load backup: %w", err)
	}
	return nil
}

// Clean removes the database at path.
func Clean(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) || path == "" {
		return ErrNoDatabase
	}
	return os.RemoveAll(path)
}

func describePath(path string) string {
	if path == "" {
		return "in memory"
	}
	return path
}
