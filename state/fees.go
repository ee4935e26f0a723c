package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

// ErrLastFeeAsset is returned when a removal would empty the fee-asset
// allow-list.
var ErrLastFeeAsset = errors.New("cannot remove last allowed fee asset")

const (
	allowedFeeAssetPrefix = "fees/allowed/"
	blockFeesPrefix       = "fees/block/"
)

func allowedFeeAssetKey(asset types.Asset) string {
	return allowedFeeAssetPrefix + assetKey(asset)
}

func blockFeesKey(asset types.Asset) string {
	return blockFeesPrefix + assetKey(asset)
}

func feeComponentsKey(kind action.Kind) string {
	return "fees/components/" + string(kind)
}

// PutAllowedFeeAsset adds asset to the fee-asset allow-list.
func PutAllowedFeeAsset(s ledger.StateWriter, asset types.Asset) error {
	return s.PutNonVerifiable(allowedFeeAssetKey(asset), []byte(asset.String()))
}

// DeleteAllowedFeeAsset removes asset from the fee-asset allow-list,
// refusing to remove the last entry.
func DeleteAllowedFeeAsset(s ledger.StateWriter, asset types.Asset) error {
	allowed, err := AllowedFeeAssets(s)
	if err != nil {
		return err
	}
	if len(allowed) == 1 && allowed[0].Equal(asset) {
		return ErrLastFeeAsset
	}
	return s.DeleteNonVerifiable(allowedFeeAssetKey(asset))
}

// IsAllowedFeeAsset reports whether asset may be used to pay fees.
func IsAllowedFeeAsset(s ledger.StateReader, asset types.Asset) (bool, error) {
	raw, err := s.GetNonVerifiable(allowedFeeAssetKey(asset))
	if err != nil {
		return false, fmt.Errorf("reading fee asset allow-list from storage: %w", err)
	}
	return raw != nil, nil
}

// AllowedFeeAssets returns every asset on the allow-list, in key order.
func AllowedFeeAssets(s ledger.StateReader) ([]types.Asset, error) {
	var assets []types.Asset
	err := s.IterateNonVerifiablePrefix(allowedFeeAssetPrefix, func(key string, value []byte) (bool, error) {
		asset, err := types.ParseAsset(string(value))
		if err != nil {
			return false, fmt.Errorf("decoding allowed fee asset: %w", err)
		}
		assets = append(assets, asset)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// PutFeeComponents stores the fee schedule entry for an action kind.
func PutFeeComponents(s ledger.StateWriter, kind action.Kind, fees action.FeeComponents) error {
	raw, err := json.Marshal(fees)
	if err != nil {
		return fmt.Errorf("encoding fee components: %w", err)
	}
	return s.Put(feeComponentsKey(kind), raw)
}

// GetFeeComponents returns the fee schedule entry for an action kind. An
// action kind with no stored entry is fee-free.
func GetFeeComponents(s ledger.StateReader, kind action.Kind) (action.FeeComponents, error) {
	raw, err := s.Get(feeComponentsKey(kind))
	if err != nil {
		return action.FeeComponents{}, fmt.Errorf("reading fee components from storage: %w", err)
	}
	if raw == nil {
		return action.FeeComponents{}, nil
	}
	var fees action.FeeComponents
	if err := json.Unmarshal(raw, &fees); err != nil {
		return action.FeeComponents{}, fmt.Errorf("decoding fee components: %w", err)
	}
	return fees, nil
}

// AddToBlockFees accrues amount of asset into the current block's fee
// totals.
func AddToBlockFees(s ledger.StateWriter, asset types.Asset, amount uint64) error {
	raw, err := s.GetNonVerifiable(blockFeesKey(asset))
	if err != nil {
		return fmt.Errorf("reading block fees from storage: %w", err)
	}
	total, err := decodeUint64(raw)
	if err != nil {
		return fmt.Errorf("decoding block fees: %w", err)
	}
	if total+amount < total {
		return fmt.Errorf("block fee total for asset %s overflows", asset)
	}
	return s.PutNonVerifiable(blockFeesKey(asset), encodeUint64(total+amount))
}

// GetBlockFees returns the per-asset fee totals accrued during the current
// block, keyed by the asset id's hex form.
func GetBlockFees(s ledger.StateReader) (map[string]uint64, error) {
	totals := make(map[string]uint64)
	err := s.IterateNonVerifiablePrefix(blockFeesPrefix, func(key string, value []byte) (bool, error) {
		total, err := decodeUint64(value)
		if err != nil {
			return false, fmt.Errorf("decoding block fees: %w", err)
		}
		totals[key[len(blockFeesPrefix):]] = total
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// ClearBlockFees resets the per-block fee totals; called by the
// block-execution loop at block boundaries.
func ClearBlockFees(s ledger.StateWriter) error {
	var keys []string
	err := s.IterateNonVerifiablePrefix(blockFeesPrefix, func(key string, value []byte) (bool, error) {
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

// FeeEvent builds the "tx.fees" event recorded when an action's fee is
// charged.
func FeeEvent(kind action.Kind, asset types.Asset, amount uint64, positionInTransaction uint64) ledger.Event {
	return ledger.NewEvent("tx.fees").
		AddStringAttribute("actionName", string(kind)).
		AddStringAttribute("asset", asset.String()).
		AddStringAttribute("feeAmount", strconv.FormatUint(amount, 10)).
		AddStringAttribute("positionInTransaction", strconv.FormatUint(positionInTransaction, 10))
}
