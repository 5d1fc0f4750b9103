package repositories

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerToggleRepository implements ToggleRepository using BadgerDB.
// Several pages share one DB; each uses its own scope.
type BadgerToggleRepository struct {
	db    *badger.DB
	scope string
}

// NewBadgerToggleRepository creates a BadgerToggleRepository for scope.
func NewBadgerToggleRepository(db *badger.DB, scope string) (*BadgerToggleRepository, error) {
	if scope == "" || strings.Contains(scope, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return &BadgerToggleRepository{db: db, scope: scope}, nil
}

// Visible reports whether postID is marked visible
func (r *BadgerToggleRepository) Visible(postID int) (bool, error) {
	var visible bool
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(toggleKey(r.scope, postID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		visible = true
		return nil
	})
	return visible, err
}

// SetVisible stores the visibility of postID. Hidden entries are deleted.
func (r *BadgerToggleRepository) SetVisible(postID int, visible bool) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := toggleKey(r.scope, postID)
		if visible {
			return txn.Set(key, []byte{1})
		}
		err := txn.Delete(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// VisibleIDs lists the visible post ids in ascending order
func (r *BadgerToggleRepository) VisibleIDs() ([]int, error) {
	ids := []int{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := scopePrefix(r.scope)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := parseToggleKey(it.Item().Key())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Ints(ids)
	return ids, nil
}

// Reset deletes every entry of the scope
func (r *BadgerToggleRepository) Reset() error {
	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := scopePrefix(r.scope)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return r.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("failed to delete %s: %v", k, err)
			}
		}
		return nil
	})
}
