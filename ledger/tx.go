package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// txWrite is a pending write in a Tx delta. deleted takes precedence over value.
type txWrite struct {
	value   []byte
	deleted bool
}

// Tx is a copy-on-write delta over a parent state (the Store or another Tx).
// Writes are visible to subsequent reads through the same Tx but not to the
// parent until Apply is called. Deltas form a chain: the block-execution
// loop holds a block-level Tx over the Store and may fork per-transaction or
// per-action children, applying or discarding them at well-defined points.
//
// A Tx is not safe for concurrent use; by construction no two actions ever
// execute concurrently against the same delta.
type Tx struct {
	parent   StateReader
	writes   map[string]txWrite
	nvWrites map[string]txWrite
	events   []Event
	objects  map[string]any
	applied  bool
}

// NewTx creates a delta over parent.
func NewTx(parent StateReader) *Tx {
	return &Tx{
		parent:   parent,
		writes:   make(map[string]txWrite),
		nvWrites: make(map[string]txWrite),
		objects:  make(map[string]any),
	}
}

// Fork creates a child delta whose reads see this delta's writes.
func (t *Tx) Fork() *Tx {
	return NewTx(t)
}

// Get retrieves a value from the verifiable namespace, consulting pending
// writes before the parent.
func (t *Tx) Get(key string) ([]byte, error) {
	if w, ok := t.writes[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	return t.parent.Get(key)
}

// GetNonVerifiable retrieves a value from the non-verifiable namespace,
// consulting pending writes before the parent.
func (t *Tx) GetNonVerifiable(key string) ([]byte, error) {
	if w, ok := t.nvWrites[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	return t.parent.GetNonVerifiable(key)
}

// Put stores a value in the verifiable namespace.
func (t *Tx) Put(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	t.writes[key] = txWrite{value: value}
	return nil
}

// Delete removes a key from the verifiable namespace.
func (t *Tx) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	t.writes[key] = txWrite{deleted: true}
	return nil
}

// PutNonVerifiable stores a value in the non-verifiable namespace.
func (t *Tx) PutNonVerifiable(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	t.nvWrites[key] = txWrite{value: value}
	return nil
}

// DeleteNonVerifiable removes a key from the non-verifiable namespace.
func (t *Tx) DeleteNonVerifiable(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	t.nvWrites[key] = txWrite{deleted: true}
	return nil
}

// IterateNonVerifiablePrefix visits non-verifiable keys with the given
// prefix in ascending order, merging pending writes over the parent's view.
func (t *Tx) IterateNonVerifiablePrefix(prefix string, fn func(key string, value []byte) (bool, error)) error {
	// Pending writes under the prefix, sorted.
	local := make([]string, 0)
	for key := range t.nvWrites {
		if strings.HasPrefix(key, prefix) {
			local = append(local, key)
		}
	}
	sort.Strings(local)

	stopped := false
	i := 0
	emitLocalBefore := func(bound string, inclusive bool) (bool, error) {
		for i < len(local) {
			key := local[i]
			if bound != "" && (key > bound || (!inclusive && key == bound)) {
				break
			}
			i++
			w := t.nvWrites[key]
			if w.deleted {
				continue
			}
			stop, err := fn(key, w.value)
			if err != nil || stop {
				return true, err
			}
		}
		return false, nil
	}

	err := t.parent.IterateNonVerifiablePrefix(prefix, func(key string, value []byte) (bool, error) {
		// Emit pending-write keys that sort strictly before the parent key.
		if stop, err := emitLocalBefore(key, false); err != nil || stop {
			stopped = true
			return true, err
		}
		// A pending write shadows the parent's value for the same key.
		if w, ok := t.nvWrites[key]; ok {
			if i < len(local) && local[i] == key {
				i++
			}
			if w.deleted {
				return false, nil
			}
			value = w.value
		}
		stop, err := fn(key, value)
		if err != nil || stop {
			stopped = true
		}
		return stop, err
	})
	if err != nil || stopped {
		return err
	}
	// Remaining pending writes after the last parent key.
	_, err = emitLocalBefore("", true)
	return err
}

// Record appends an event to the delta's event log.
func (t *Tx) Record(event Event) {
	t.events = append(t.events, event)
}

// Events returns the events recorded in this delta (not the parent's).
func (t *Tx) Events() []Event {
	return t.events
}

// PutObject stores a value in the ephemeral per-block object store.
func (t *Tx) PutObject(key string, value any) {
	t.objects[key] = value
}

// GetObject retrieves a value from the ephemeral per-block object store,
// consulting this delta before the parent.
func (t *Tx) GetObject(key string) any {
	if v, ok := t.objects[key]; ok {
		return v
	}
	return t.parent.GetObject(key)
}

// Apply pushes this delta's writes, events and objects into the parent.
// When the parent is the Store, events and objects are discarded: they are
// per-block ephemeral state that the block-execution loop must drain via
// Events and GetObject before applying the block delta.
// A Tx must not be used after Apply.
func (t *Tx) Apply() error {
	if t.applied {
		return fmt.Errorf("ledger tx already applied")
	}
	t.applied = true

	switch parent := t.parent.(type) {
	case *Tx:
		for key, w := range t.writes {
			parent.writes[key] = w
		}
		for key, w := range t.nvWrites {
			parent.nvWrites[key] = w
		}
		parent.events = append(parent.events, t.events...)
		for key, v := range t.objects {
			parent.objects[key] = v
		}
		return nil
	case *Store:
		return parent.applyWrites(t.writes, t.nvWrites)
	default:
		return fmt.Errorf("cannot apply ledger tx to parent of type %T", t.parent)
	}
}
