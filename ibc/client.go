// Package ibc provides the minimal IBC client machinery the engine needs:
// tendermint-style client and consensus state, client status derivation,
// relay message handling for the client lifecycle, and ICS-20 packet
// construction with the source/sink escrow-versus-burn decision.
//
// Full packet relay (recv, acknowledge, timeout) is owned by an external
// handler; this package covers exactly what checked actions touch.
package ibc

import (
	"fmt"
	"time"
)

// Height is an IBC revision height.
type Height struct {
	RevisionNumber uint64 `json:"revision_number"`
	RevisionHeight uint64 `json:"revision_height"`
}

// IsZero reports whether the height is unset.
func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

// After reports whether h is strictly greater than other, comparing revision
// number first.
func (h Height) After(other Height) bool {
	if h.RevisionNumber != other.RevisionNumber {
		return h.RevisionNumber > other.RevisionNumber
	}
	return h.RevisionHeight > other.RevisionHeight
}

// String renders the height in the canonical "revision-height" form.
func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// TrustLevel is the fraction of validator power a light client requires.
type TrustLevel struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// ClientState is the stored state of a tendermint light client.
type ClientState struct {
	ChainID         string        `json:"chain_id"`
	TrustLevel      TrustLevel    `json:"trust_level"`
	TrustingPeriod  time.Duration `json:"trusting_period"`
	UnbondingPeriod time.Duration `json:"unbonding_period"`
	MaxClockDrift   time.Duration `json:"max_clock_drift"`
	LatestHeight    Height        `json:"latest_height"`
	FrozenHeight    *Height       `json:"frozen_height,omitempty"`
	ProofSpecs      []string      `json:"proof_specs"`
	UpgradePath     []string      `json:"upgrade_path"`
}

// ConsensusState is a verified snapshot of the counterparty chain at one
// height.
type ConsensusState struct {
	Timestamp          time.Time `json:"timestamp"`
	Root               []byte    `json:"root"`
	NextValidatorsHash []byte    `json:"next_validators_hash"`
}

// ClientStatus is the operational status of a light client, derived from its
// stored state and the current block time.
type ClientStatus string

const (
	ClientActive  ClientStatus = "active"
	ClientExpired ClientStatus = "expired"
	ClientFrozen  ClientStatus = "frozen"
	ClientUnknown ClientStatus = "unknown"
)

// Status derives the client's status at the given block time from its latest
// consensus state. A nil consensus state yields Unknown.
func Status(cs ClientState, latest *ConsensusState, now time.Time) ClientStatus {
	if cs.FrozenHeight != nil {
		return ClientFrozen
	}
	if latest == nil {
		return ClientUnknown
	}
	if now.Sub(latest.Timestamp) >= cs.TrustingPeriod {
		return ClientExpired
	}
	return ClientActive
}
