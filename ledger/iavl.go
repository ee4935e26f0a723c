package ledger

import (
	"fmt"
	"sync"
	"time"

	corestore "cosmossdk.io/core/store"
	"github.com/cosmos/iavl"
	idb "github.com/cosmos/iavl/db"
)

// Store is the durable ledger: a cosmos/iavl merkle tree for the verifiable
// namespace and a plain key-value database for the non-verifiable namespace.
// It implements StateReader over the latest (working) state; mutation goes
// through Tx deltas applied via applyWrites.
type Store struct {
	tree    *iavl.MutableTree
	db      idb.DB
	nv      corestore.KVStoreWithBatch
	metrics Metrics
	mu      sync.RWMutex
}

// NewStore creates a persistent ledger store under path.
// cacheSize is the number of iavl nodes to cache in memory.
func NewStore(path string, cacheSize int) (*Store, error) {
	db, err := idb.NewGoLevelDB("state", path)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb for iavl: %w", err)
	}
	nv, err := idb.NewGoLevelDB("nonverifiable", path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening leveldb for non-verifiable state: %w", err)
	}

	tree := iavl.NewMutableTree(db, cacheSize, false, iavl.NewNopLogger())
	if _, err := tree.Load(); err != nil {
		db.Close()
		nv.Close()
		return nil, fmt.Errorf("loading iavl tree: %w", err)
	}

	return &Store{tree: tree, db: db, nv: nv, metrics: nopMetrics{}}, nil
}

// NewMemStore creates an in-memory ledger store for testing.
func NewMemStore() *Store {
	db := idb.NewMemDB()
	tree := iavl.NewMutableTree(db, 0, false, iavl.NewNopLogger())
	return &Store{tree: tree, db: db, nv: idb.NewMemDB(), metrics: nopMetrics{}}
}

// SetMetrics attaches a metrics collector to the store. Passing nil restores
// the no-op sink.
func (s *Store) SetMetrics(m Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m == nil {
		m = nopMetrics{}
	}
	s.metrics = m
}

// Get retrieves a value from the verifiable namespace.
func (s *Store) Get(key string) ([]byte, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.tree.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("getting key: %w", err)
	}
	s.metrics.IncLedgerGets()
	s.metrics.ObserveLedgerLatency(OpGet, time.Since(start))
	return value, nil
}

// GetNonVerifiable retrieves a value from the non-verifiable namespace.
func (s *Store) GetNonVerifiable(key string) ([]byte, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.nv.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("getting non-verifiable key: %w", err)
	}
	s.metrics.IncLedgerGets()
	s.metrics.ObserveLedgerLatency(OpGet, time.Since(start))
	return value, nil
}

// IterateNonVerifiablePrefix visits non-verifiable keys with the given
// prefix in ascending order.
func (s *Store) IterateNonVerifiablePrefix(prefix string, fn func(key string, value []byte) (bool, error)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.nv.Iterator([]byte(prefix), prefixEnd(prefix))
	if err != nil {
		return fmt.Errorf("creating non-verifiable iterator: %w", err)
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		stop, err := fn(string(it.Key()), it.Value())
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return it.Error()
}

// GetObject always returns nil: the object store is per-block ephemeral
// state and lives only in Tx deltas.
func (s *Store) GetObject(string) any {
	return nil
}

// Commit saves the current working tree as a new version.
// Returns the root hash and version number.
func (s *Store) Commit() (hash []byte, version int64, err error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, version, err = s.tree.SaveVersion()
	if err != nil {
		return nil, 0, fmt.Errorf("saving version: %w", err)
	}
	s.metrics.SetLedgerVersion(version)
	s.metrics.ObserveLedgerLatency(OpCommit, time.Since(start))
	return hash, version, nil
}

// RootHash returns the root hash of the working tree, reflecting
// uncommitted changes.
func (s *Store) RootHash() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.WorkingHash()
}

// Version returns the latest committed version number.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.Version()
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing iavl backing db: %w", err)
	}
	return s.nv.Close()
}

// applyWrites applies a Tx delta's writes to the working state.
func (s *Store) applyWrites(writes, nvWrites map[string]txWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range writes {
		if w.deleted {
			if _, _, err := s.tree.Remove([]byte(key)); err != nil {
				return fmt.Errorf("removing key: %w", err)
			}
			s.metrics.IncLedgerDeletes()
			continue
		}
		if _, err := s.tree.Set([]byte(key), w.value); err != nil {
			return fmt.Errorf("setting key: %w", err)
		}
		s.metrics.IncLedgerSets()
	}
	for key, w := range nvWrites {
		if w.deleted {
			if err := s.nv.Delete([]byte(key)); err != nil {
				return fmt.Errorf("removing non-verifiable key: %w", err)
			}
			s.metrics.IncLedgerDeletes()
			continue
		}
		if err := s.nv.Set([]byte(key), w.value); err != nil {
			return fmt.Errorf("setting non-verifiable key: %w", err)
		}
		s.metrics.IncLedgerSets()
	}
	return nil
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, or nil if the prefix is all 0xff.
func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
