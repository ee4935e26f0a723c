package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AssetIDLen is the length in bytes of an IBC-form asset identifier.
const AssetIDLen = 32

// AssetID is the IBC form of an asset denomination: the SHA-256 hash of the
// full trace denomination string. Two assets are interchangeable exactly when
// their IDs are equal.
type AssetID [AssetIDLen]byte

// String returns the canonical "ibc/<hex>" rendering of the ID.
func (id AssetID) String() string {
	return "ibc/" + hex.EncodeToString(id[:])
}

// Asset is a token denomination. It is held in one of two forms:
//
//   - trace form, e.g. "stone" or "transfer/channel-0/stone", which records
//     the full IBC transfer path of the token;
//   - IBC form, "ibc/<64 hex chars>", which is the SHA-256 of the trace form.
//
// The trace form is recoverable from the IBC form only through the on-ledger
// asset mapping, which is append-only.
type Asset struct {
	trace   string
	id      AssetID
	ibcForm bool
}

// NewTraceAsset creates an asset in trace form.
func NewTraceAsset(trace string) Asset {
	return Asset{trace: trace}
}

// NewIBCAsset creates an asset in IBC form.
func NewIBCAsset(id AssetID) Asset {
	return Asset{id: id, ibcForm: true}
}

// ParseAsset parses a denomination string in either form.
func ParseAsset(s string) (Asset, error) {
	if s == "" {
		return Asset{}, fmt.Errorf("asset denomination must not be empty")
	}
	if rest, ok := strings.CutPrefix(s, "ibc/"); ok {
		raw, err := hex.DecodeString(rest)
		if err != nil {
			return Asset{}, fmt.Errorf("decoding ibc asset id: %w", err)
		}
		if len(raw) != AssetIDLen {
			return Asset{}, fmt.Errorf("ibc asset id must be %d bytes, got %d", AssetIDLen, len(raw))
		}
		var id AssetID
		copy(id[:], raw)
		return NewIBCAsset(id), nil
	}
	return NewTraceAsset(s), nil
}

// ID returns the IBC-form identifier of the asset. For trace-form assets this
// is the SHA-256 of the trace string.
func (a Asset) ID() AssetID {
	if a.ibcForm {
		return a.id
	}
	return AssetID(sha256.Sum256([]byte(a.trace)))
}

// IsIBCForm reports whether the asset is held in IBC form, i.e. whether its
// trace denomination is unknown without consulting the asset mapping.
func (a Asset) IsIBCForm() bool {
	return a.ibcForm
}

// Trace returns the trace denomination. It is empty for IBC-form assets.
func (a Asset) Trace() string {
	return a.trace
}

// String returns the canonical rendering of the asset in its held form.
func (a Asset) String() string {
	if a.ibcForm {
		return a.id.String()
	}
	return a.trace
}

// Equal reports whether two assets denote the same token, comparing by ID so
// that a trace-form asset equals its own IBC form.
func (a Asset) Equal(other Asset) bool {
	return a.ID() == other.ID()
}

// HasLeadingPortChannel reports whether a trace-form asset's first path
// segment is "<port>/<channel>". Used to decide whether this chain is the
// source of the token for ICS-20 escrow-versus-burn accounting. IBC-form
// assets report false since their path is unknown.
func (a Asset) HasLeadingPortChannel(port, channel string) bool {
	if a.ibcForm {
		return false
	}
	return strings.HasPrefix(a.trace, port+"/"+channel+"/")
}
