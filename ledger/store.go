// Package ledger provides the versioned key-value store backing the
// state-transition engine, together with the copy-on-write transaction
// deltas that actions read from and write to.
//
// The store exposes two namespaces: a verifiable namespace held in a
// cosmos/iavl merkle tree (balances, bridge metadata, validator set, fee
// tables, authority addresses, IBC client state), whose root hash commits
// the chain state, and a non-verifiable namespace held in a plain key-value
// database (withdrawal anti-replay records, fee-asset allow-list entries,
// per-block fee totals) which must be deterministic but is not merkleized.
package ledger

// StateReader provides read access to ledger state. Implementations are the
// Store itself (latest state) and Tx (a delta over a parent reader).
type StateReader interface {
	// Get retrieves a value from the verifiable namespace.
	// Returns nil, nil if the key does not exist.
	Get(key string) ([]byte, error)

	// GetNonVerifiable retrieves a value from the non-verifiable namespace.
	// Returns nil, nil if the key does not exist.
	GetNonVerifiable(key string) ([]byte, error)

	// IterateNonVerifiablePrefix visits all non-verifiable keys with the
	// given prefix in ascending key order. Iteration stops early if fn
	// returns stop=true or an error.
	IterateNonVerifiablePrefix(prefix string, fn func(key string, value []byte) (stop bool, err error)) error

	// GetObject retrieves a value from the ephemeral per-block object
	// store. Returns nil if the key does not exist.
	GetObject(key string) any
}

// StateWriter extends StateReader with mutation, event recording and the
// ephemeral object store. All writes go into the enclosing Tx delta and
// become durable only when the delta chain is applied to the Store.
type StateWriter interface {
	StateReader

	// Put stores a value in the verifiable namespace.
	Put(key string, value []byte) error

	// Delete removes a key from the verifiable namespace.
	Delete(key string) error

	// PutNonVerifiable stores a value in the non-verifiable namespace.
	PutNonVerifiable(key string, value []byte) error

	// DeleteNonVerifiable removes a key from the non-verifiable namespace.
	DeleteNonVerifiable(key string) error

	// Record appends an event to the current block's event log.
	Record(event Event)

	// PutObject stores a value in the ephemeral per-block object store.
	PutObject(key string, value any)
}
