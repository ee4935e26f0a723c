package state

import (
	"fmt"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

const nativeAssetKey = "assets/native"

func assetTraceKey(id types.AssetID) string {
	return "assets/trace/" + id.String()[4:]
}

// PutNativeAsset stores the chain's native fee denomination.
func PutNativeAsset(s ledger.StateWriter, asset types.Asset) error {
	if asset.IsIBCForm() {
		return fmt.Errorf("native asset must be supplied in trace form")
	}
	if err := s.Put(nativeAssetKey, []byte(asset.Trace())); err != nil {
		return err
	}
	return PutAssetTrace(s, asset)
}

// GetNativeAsset returns the chain's native fee denomination.
func GetNativeAsset(s ledger.StateReader) (types.Asset, error) {
	raw, err := s.Get(nativeAssetKey)
	if err != nil {
		return types.Asset{}, fmt.Errorf("reading native asset from storage: %w", err)
	}
	if raw == nil {
		return types.Asset{}, fmt.Errorf("native asset not set")
	}
	return types.NewTraceAsset(string(raw)), nil
}

// PutAssetTrace records the mapping from an asset's IBC form to its trace
// denomination. The mapping is append-only: an id, once mapped, always maps
// to the same trace because the id is the hash of the trace.
func PutAssetTrace(s ledger.StateWriter, asset types.Asset) error {
	if asset.IsIBCForm() {
		return fmt.Errorf("cannot map an ibc-form asset to itself")
	}
	return s.Put(assetTraceKey(asset.ID()), []byte(asset.Trace()))
}

// HasAssetTrace reports whether the trace denomination for id is known.
func HasAssetTrace(s ledger.StateReader, id types.AssetID) (bool, error) {
	raw, err := s.Get(assetTraceKey(id))
	if err != nil {
		return false, fmt.Errorf("reading asset trace from storage: %w", err)
	}
	return raw != nil, nil
}

// ResolveAssetTrace returns the trace-form asset for an id previously
// recorded with PutAssetTrace.
func ResolveAssetTrace(s ledger.StateReader, id types.AssetID) (types.Asset, error) {
	raw, err := s.Get(assetTraceKey(id))
	if err != nil {
		return types.Asset{}, fmt.Errorf("reading asset trace from storage: %w", err)
	}
	if raw == nil {
		return types.Asset{}, fmt.Errorf("no trace denomination recorded for asset %s", id)
	}
	return types.NewTraceAsset(string(raw)), nil
}

// ResolveAsset returns asset in trace form, consulting the asset mapping if
// it is held in IBC form.
func ResolveAsset(s ledger.StateReader, asset types.Asset) (types.Asset, error) {
	if !asset.IsIBCForm() {
		return asset, nil
	}
	return ResolveAssetTrace(s, asset.ID())
}
