package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	uniqueSegment = "idx:"
	setSegment    = "set:"

	// deleteBatchSize bounds the number of documents removed per transaction
	// so bulk deletes stay under badger's transaction size limit.
	deleteBatchSize = 200
)

// Entity provides generic CRUD operations for a JSON document type.
//
// Two kinds of secondary index are supported:
//   - unique indexes map a value to exactly one ID and reject duplicates
//     inside the writing transaction;
//   - set indexes map a value to many IDs and support prefix scans.
type Entity[T any] struct {
	store  *Store
	prefix string
	unique []uniqueIndex[T]
	sets   []setIndex[T]
}

type uniqueIndex[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string
}

type setIndex[T any] struct {
	name   string
	keyGen func(*T) string
}

// NewEntity creates an Entity for type T stored under prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithIndex adds a unique secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.unique = append(e.unique, uniqueIndex[T]{name: name, keyGen: keyGen})
	return e
}

// WithIndexTransform adds a unique secondary index whose lookups are
// normalized with lookupTransform (case folding, trimming).
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.unique = append(e.unique, uniqueIndex[T]{name: name, keyGen: keyGen, lookupTransform: lookupTransform})
	return e
}

// WithSetIndex adds a non-unique index: many documents may share a value.
func (e *Entity[T]) WithSetIndex(name string, keyGen func(*T) string) *Entity[T] {
	e.sets = append(e.sets, setIndex[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) uniqueKey(name, value string) []byte {
	return []byte(e.prefix + uniqueSegment + name + ":" + value)
}

func (e *Entity[T]) setPrefix(name, value string) []byte {
	return []byte(e.prefix + setSegment + name + ":" + value + ":")
}

func (e *Entity[T]) setKey(name, value, id string) []byte {
	return append(e.setPrefix(name, value), id...)
}

// Create stores a new document under id. It fails with ErrAlreadyExists
// when the ID or any unique index value is taken; both checks and the write
// happen in one transaction.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(e.prefix + id)); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkUnique(txn, nil, entity); err != nil {
			return err
		}

		if err := txn.Set([]byte(e.prefix+id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexes(txn, id, entity)
	})
}

// Get retrieves a document by ID, or ErrNotFound.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.load(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetByIndex retrieves the document a unique index value points at.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.unique {
		if idx.name == indexName && idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
			break
		}
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.uniqueKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get index key: %w", err)
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to read index value: %w", err)
		}

		entity, err = e.load(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Mutate loads the document, applies fn and writes it back in a single
// transaction, keeping every index in step. fn may return an error to abort
// without writing. A commit that loses to a concurrent write is retried, so
// fn may run more than once and must only depend on its argument.
func (e *Entity[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var updated *T
	err := e.store.update(ctx, func(txn *badger.Txn) error {
		next, err := e.mutateTxn(txn, id, fn)
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Entity[T]) mutateTxn(txn *badger.Txn, id string, fn func(*T) error) (*T, error) {
	old, err := e.load(txn, id)
	if err != nil {
		return nil, err
	}

	// Reload into a second value so fn cannot alias the old index keys.
	next, err := e.load(txn, id)
	if err != nil {
		return nil, err
	}
	if err := fn(next); err != nil {
		return nil, err
	}

	if err := e.checkUnique(txn, old, next); err != nil {
		return nil, err
	}
	if err := e.deleteIndexes(txn, id, old); err != nil {
		return nil, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := txn.Set([]byte(e.prefix+id), data); err != nil {
		return nil, fmt.Errorf("failed to set key: %w", err)
	}
	if err := e.writeIndexes(txn, id, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Update replaces an existing document. Returns ErrNotFound if it does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	_, err := e.Mutate(ctx, id, func(current *T) error {
		*current = *entity
		return nil
	})
	return err
}

// Delete removes a document and its index keys. Deleting a missing
// document is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.update(ctx, func(txn *badger.Txn) error {
		_, err := e.deleteTxn(txn, id)
		return err
	})
}

func (e *Entity[T]) deleteTxn(txn *badger.Txn, id string) (bool, error) {
	entity, err := e.load(txn, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := e.deleteIndexes(txn, id, entity); err != nil {
		return false, err
	}
	if err := txn.Delete([]byte(e.prefix + id)); err != nil {
		return false, fmt.Errorf("failed to delete key: %w", err)
	}
	return true, nil
}

// IDsBySetIndex returns the IDs filed under value in a set index.
func (e *Entity[T]) IDsBySetIndex(ctx context.Context, indexName, value string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = e.idsBySetIndexTxn(ctx, txn, indexName, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// idsBySetIndexTxn scans a set index inside txn. In a read-write
// transaction every key visited is recorded as a read, so a concurrent
// commit touching them makes txn fail with badger.ErrConflict.
func (e *Entity[T]) idsBySetIndexTxn(ctx context.Context, txn *badger.Txn, indexName, value string) ([]string, error) {
	prefix := e.setPrefix(indexName, value)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids = append(ids, string(it.Item().Key()[len(prefix):]))
	}
	return ids, nil
}

// listBySetIndexTxn loads every document filed under value inside txn.
func (e *Entity[T]) listBySetIndexTxn(ctx context.Context, txn *badger.Txn, indexName, value string) ([]*T, error) {
	ids, err := e.idsBySetIndexTxn(ctx, txn, indexName, value)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.load(txn, id)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// ListBySetIndex loads every document filed under value in a set index.
func (e *Entity[T]) ListBySetIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	ids, err := e.IDsBySetIndex(ctx, indexName, value)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	err = e.store.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			entity, err := e.load(txn, id)
			if errors.Is(err, ErrNotFound) {
				// Removed between the index scan and this read.
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBySetIndex removes every document filed under value in a set index
// and returns how many were removed. Documents are deleted in batches, one
// transaction per batch; a failure leaves earlier batches deleted.
func (e *Entity[T]) DeleteBySetIndex(ctx context.Context, indexName, value string) (int, error) {
	ids, err := e.IDsBySetIndex(ctx, indexName, value)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for start := 0; start < len(ids); start += deleteBatchSize {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		batch := ids[start:min(start+deleteBatchSize, len(ids))]
		n := 0
		err := e.store.update(ctx, func(txn *badger.Txn) error {
			n = 0
			for _, id := range batch {
				removed, err := e.deleteTxn(txn, id)
				if err != nil {
					return err
				}
				if removed {
					n++
				}
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("delete batch: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

// List returns an iterator over all documents of this entity.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)

		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}

				rest := string(it.Item().Key()[len(prefix):])
				if strings.HasPrefix(rest, uniqueSegment) || strings.HasPrefix(rest, setSegment) {
					continue
				}

				var entity T
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				}); err != nil {
					yield(nil, fmt.Errorf("failed to unmarshal entity: %w", err))
					return err
				}

				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

func (e *Entity[T]) load(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get([]byte(e.prefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &entity, nil
}

// checkUnique fails if a unique index value of next is held by another
// document. Values next shares with old (its previous version) are allowed.
func (e *Entity[T]) checkUnique(txn *badger.Txn, old, next *T) error {
	for _, idx := range e.unique {
		owned := map[string]bool{}
		if old != nil {
			for _, k := range idx.keyGen(old) {
				owned[k] = true
			}
		}

		for _, k := range idx.keyGen(next) {
			if owned[k] {
				continue
			}
			_, err := txn.Get(e.uniqueKey(idx.name, k))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, k, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) writeIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.unique {
		for _, k := range idx.keyGen(entity) {
			if err := txn.Set(e.uniqueKey(idx.name, k), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	for _, idx := range e.sets {
		if v := idx.keyGen(entity); v != "" {
			if err := txn.Set(e.setKey(idx.name, v, id), nil); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.unique {
		for _, k := range idx.keyGen(entity) {
			if err := txn.Delete(e.uniqueKey(idx.name, k)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, idx := range e.sets {
		if v := idx.keyGen(entity); v != "" {
			if err := txn.Delete(e.setKey(idx.name, v, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}
