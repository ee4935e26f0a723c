package state

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

const (
	sudoAddressKey  = "authority/sudo"
	validatorSetKey = "authority/validators"
)

func validatorUpdateKey(key types.VerificationKey) string {
	return "authority/updates/" + key.String()
}

// PutSudoAddress sets the chain's governance authority.
func PutSudoAddress(s ledger.StateWriter, sudo types.Address) error {
	raw := sudo.Bytes()
	return s.Put(sudoAddressKey, raw[:])
}

// GetSudoAddress returns the chain's governance authority.
func GetSudoAddress(s ledger.StateReader) (types.Address, error) {
	return getStoredAddress(s, sudoAddressKey, "sudo address")
}

// Validator is one member of the validator set.
type Validator struct {
	VerificationKey types.VerificationKey
	Power           uint64
}

type validatorJSON struct {
	VerificationKey string `json:"verification_key"`
	Power           uint64 `json:"power"`
}

// ValidatorSet is the chain's current validator set, keyed by verification
// key.
type ValidatorSet struct {
	powers map[types.VerificationKey]uint64
}

// NewValidatorSet builds a validator set from its members.
func NewValidatorSet(validators ...Validator) ValidatorSet {
	powers := make(map[types.VerificationKey]uint64, len(validators))
	for _, v := range validators {
		powers[v.VerificationKey] = v.Power
	}
	return ValidatorSet{powers: powers}
}

// Len returns the number of validators in the set.
func (vs ValidatorSet) Len() int {
	return len(vs.powers)
}

// Contains reports whether the key is a member of the set.
func (vs ValidatorSet) Contains(key types.VerificationKey) bool {
	_, ok := vs.powers[key]
	return ok
}

// PowerOf returns the voting power of the key, or zero if absent.
func (vs ValidatorSet) PowerOf(key types.VerificationKey) uint64 {
	return vs.powers[key]
}

// Apply merges a validator update into the set: power zero removes the
// validator, any other power inserts or replaces it.
func (vs *ValidatorSet) Apply(update Validator) {
	if vs.powers == nil {
		vs.powers = make(map[types.VerificationKey]uint64)
	}
	if update.Power == 0 {
		delete(vs.powers, update.VerificationKey)
		return
	}
	vs.powers[update.VerificationKey] = update.Power
}

// Validators returns the members sorted by verification key.
func (vs ValidatorSet) Validators() []Validator {
	validators := make([]Validator, 0, len(vs.powers))
	for key, power := range vs.powers {
		validators = append(validators, Validator{VerificationKey: key, Power: power})
	}
	sort.Slice(validators, func(i, j int) bool {
		return validators[i].VerificationKey.String() < validators[j].VerificationKey.String()
	})
	return validators
}

// PutValidatorSet stores the validator set.
func PutValidatorSet(s ledger.StateWriter, vs ValidatorSet) error {
	members := vs.Validators()
	encoded := make([]validatorJSON, len(members))
	for i, v := range members {
		encoded[i] = validatorJSON{VerificationKey: v.VerificationKey.String(), Power: v.Power}
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encoding validator set: %w", err)
	}
	return s.Put(validatorSetKey, raw)
}

// GetValidatorSet returns the validator set. A fresh chain with no stored
// set yields an empty set.
func GetValidatorSet(s ledger.StateReader) (ValidatorSet, error) {
	raw, err := s.Get(validatorSetKey)
	if err != nil {
		return ValidatorSet{}, fmt.Errorf("reading validator set from storage: %w", err)
	}
	if raw == nil {
		return NewValidatorSet(), nil
	}
	var encoded []validatorJSON
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return ValidatorSet{}, fmt.Errorf("decoding validator set: %w", err)
	}
	validators := make([]Validator, len(encoded))
	for i, v := range encoded {
		keyRaw, err := hex.DecodeString(v.VerificationKey)
		if err != nil {
			return ValidatorSet{}, fmt.Errorf("decoding validator verification key: %w", err)
		}
		key, err := types.VerificationKeyFromBytes(keyRaw)
		if err != nil {
			return ValidatorSet{}, err
		}
		validators[i] = Validator{VerificationKey: key, Power: v.Power}
	}
	return NewValidatorSet(validators...), nil
}

// StageValidatorUpdate records a validator-set delta for the block-end
// collector. Updates are keyed by verification key, so a later update for
// the same validator within a block replaces the earlier one.
func StageValidatorUpdate(s ledger.StateWriter, update Validator) error {
	raw, err := json.Marshal(validatorJSON{
		VerificationKey: update.VerificationKey.String(),
		Power:           update.Power,
	})
	if err != nil {
		return fmt.Errorf("encoding validator update: %w", err)
	}
	return s.PutNonVerifiable(validatorUpdateKey(update.VerificationKey), raw)
}

// StagedValidatorUpdates returns all validator updates staged during the
// current block, sorted by verification key.
func StagedValidatorUpdates(s ledger.StateReader) ([]Validator, error) {
	var updates []Validator
	err := s.IterateNonVerifiablePrefix("authority/updates/", func(key string, value []byte) (bool, error) {
		var encoded validatorJSON
		if err := json.Unmarshal(value, &encoded); err != nil {
			return false, fmt.Errorf("decoding validator update: %w", err)
		}
		keyRaw, err := hex.DecodeString(encoded.VerificationKey)
		if err != nil {
			return false, fmt.Errorf("decoding validator verification key: %w", err)
		}
		vkey, err := types.VerificationKeyFromBytes(keyRaw)
		if err != nil {
			return false, err
		}
		updates = append(updates, Validator{VerificationKey: vkey, Power: encoded.Power})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// ClearValidatorUpdates drops all staged validator updates; called by the
// block-execution loop after collecting them at block end.
func ClearValidatorUpdates(s ledger.StateWriter) error {
	var keys []string
	err := s.IterateNonVerifiablePrefix("authority/updates/", func(key string, value []byte) (bool, error) {
		keys = append(keys, key)
		return false, nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.DeleteNonVerifiable(key); err != nil {
			return err
		}
	}
	return nil
}
