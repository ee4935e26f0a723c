// Package genesis loads and applies the genesis document: the TOML file that
// seeds a fresh ledger with the chain's address prefixes, governance
// addresses, native asset, fee schedule, account balances and initial
// validator set.
package genesis

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// Genesis is the genesis document for a stateberry chain.
type Genesis struct {
	ChainID   string          `toml:"chain_id"`
	Prefixes  PrefixesConfig  `toml:"prefixes"`
	Assets    AssetsConfig    `toml:"assets"`
	Authority AuthorityConfig `toml:"authority"`
	IBC       IBCConfig       `toml:"ibc"`

	// Fees maps an action kind to its fee components. Kinds absent from the
	// map are fee-free.
	Fees map[string]action.FeeComponents `toml:"fees"`

	Accounts   []Account          `toml:"accounts"`
	Validators []GenesisValidator `toml:"validators"`
}

// PrefixesConfig holds the chain's bech32m address prefixes.
type PrefixesConfig struct {
	// Base is the prefix every address in actions must carry.
	Base string `toml:"base"`

	// IBCCompat is the prefix used for compat-form ICS-20 return addresses.
	IBCCompat string `toml:"ibc_compat"`
}

// AssetsConfig holds the chain's asset configuration.
type AssetsConfig struct {
	// Native is the trace denomination of the chain's native asset.
	Native string `toml:"native"`

	// AllowedFeeAssets lists the denominations accepted for fee payment.
	AllowedFeeAssets []string `toml:"allowed_fee_assets"`
}

// AuthorityConfig holds the chain's governance addresses.
type AuthorityConfig struct {
	// SudoAddress is the chain governance authority.
	SudoAddress string `toml:"sudo_address"`

	// IBCSudoAddress is the IBC governance authority.
	IBCSudoAddress string `toml:"ibc_sudo_address"`
}

// IBCConfig holds the initial IBC relayer set.
type IBCConfig struct {
	// Relayers lists the addresses permitted to submit relay actions.
	Relayers []string `toml:"relayers"`
}

// Account is an initial account balance in the native asset.
type Account struct {
	Address string `toml:"address"`
	Balance uint64 `toml:"balance"`
}

// GenesisValidator is one entry of the initial validator set.
type GenesisValidator struct {
	// VerificationKey is the hex-encoded ed25519 public key.
	VerificationKey string `toml:"verification_key"`
	Power           uint64 `toml:"power"`
}

// Load loads and validates a genesis document from a TOML file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := toml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validating genesis: %w", err)
	}
	return &g, nil
}

// Validation errors.
var (
	ErrEmptyChainID        = errors.New("chain_id cannot be empty")
	ErrEmptyBasePrefix     = errors.New("prefixes base cannot be empty")
	ErrEmptyNativeAsset    = errors.New("assets native cannot be empty")
	ErrIBCFormNativeAsset  = errors.New("assets native must be a trace denomination")
	ErrNoAllowedFeeAssets  = errors.New("at least one allowed fee asset is required")
	ErrEmptySudoAddress    = errors.New("authority sudo_address cannot be empty")
	ErrEmptyIBCSudoAddress = errors.New("authority ibc_sudo_address cannot be empty")
	ErrNoValidators        = errors.New("at least one validator is required")
	ErrZeroValidatorPower  = errors.New("validator power must be positive")
)

// Validate checks the genesis document for errors.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return ErrEmptyChainID
	}
	if g.Prefixes.Base == "" {
		return ErrEmptyBasePrefix
	}
	if g.Assets.Native == "" {
		return ErrEmptyNativeAsset
	}
	native, err := types.ParseAsset(g.Assets.Native)
	if err != nil {
		return fmt.Errorf("parsing native asset: %w", err)
	}
	if native.IsIBCForm() {
		return ErrIBCFormNativeAsset
	}
	if len(g.Assets.AllowedFeeAssets) == 0 {
		return ErrNoAllowedFeeAssets
	}
	for _, denom := range g.Assets.AllowedFeeAssets {
		if _, err := types.ParseAsset(denom); err != nil {
			return fmt.Errorf("parsing allowed fee asset `%s`: %w", denom, err)
		}
	}

	if g.Authority.SudoAddress == "" {
		return ErrEmptySudoAddress
	}
	if g.Authority.IBCSudoAddress == "" {
		return ErrEmptyIBCSudoAddress
	}
	if _, err := g.parseAddress(g.Authority.SudoAddress); err != nil {
		return fmt.Errorf("parsing sudo address: %w", err)
	}
	if _, err := g.parseAddress(g.Authority.IBCSudoAddress); err != nil {
		return fmt.Errorf("parsing ibc sudo address: %w", err)
	}
	for _, relayer := range g.IBC.Relayers {
		if _, err := g.parseAddress(relayer); err != nil {
			return fmt.Errorf("parsing ibc relayer address: %w", err)
		}
	}

	for kind := range g.Fees {
		if !slices.Contains(action.Kinds, action.Kind(kind)) {
			return fmt.Errorf("fees name unknown action kind `%s`", kind)
		}
	}

	for _, account := range g.Accounts {
		if _, err := g.parseAddress(account.Address); err != nil {
			return fmt.Errorf("parsing account address: %w", err)
		}
	}

	if len(g.Validators) == 0 {
		return ErrNoValidators
	}
	for _, v := range g.Validators {
		if _, err := parseVerificationKey(v.VerificationKey); err != nil {
			return fmt.Errorf("parsing validator key: %w", err)
		}
		if v.Power == 0 {
			return ErrZeroValidatorPower
		}
	}
	return nil
}

// Apply seeds the genesis state into the given ledger delta. The document
// must already be validated.
func (g *Genesis) Apply(tx *ledger.Tx) error {
	if err := state.PutBasePrefix(tx, g.Prefixes.Base); err != nil {
		return err
	}
	if g.Prefixes.IBCCompat != "" {
		if err := state.PutIBCCompatPrefix(tx, g.Prefixes.IBCCompat); err != nil {
			return err
		}
	}
	if err := state.PutChainID(tx, g.ChainID); err != nil {
		return err
	}
	if err := state.PutBlockHeight(tx, 0); err != nil {
		return err
	}

	native, err := types.ParseAsset(g.Assets.Native)
	if err != nil {
		return fmt.Errorf("parsing native asset: %w", err)
	}
	if err := state.PutNativeAsset(tx, native); err != nil {
		return err
	}
	for _, denom := range g.Assets.AllowedFeeAssets {
		asset, err := types.ParseAsset(denom)
		if err != nil {
			return fmt.Errorf("parsing allowed fee asset `%s`: %w", denom, err)
		}
		if err := state.PutAllowedFeeAsset(tx, asset); err != nil {
			return err
		}
	}

	sudo, err := g.parseAddress(g.Authority.SudoAddress)
	if err != nil {
		return fmt.Errorf("parsing sudo address: %w", err)
	}
	if err := state.PutSudoAddress(tx, sudo); err != nil {
		return err
	}
	ibcSudo, err := g.parseAddress(g.Authority.IBCSudoAddress)
	if err != nil {
		return fmt.Errorf("parsing ibc sudo address: %w", err)
	}
	if err := state.PutIBCSudoAddress(tx, ibcSudo); err != nil {
		return err
	}
	for _, relayer := range g.IBC.Relayers {
		addr, err := g.parseAddress(relayer)
		if err != nil {
			return fmt.Errorf("parsing ibc relayer address: %w", err)
		}
		if err := state.PutIBCRelayer(tx, addr); err != nil {
			return err
		}
	}

	for kind, fees := range g.Fees {
		if err := state.PutFeeComponents(tx, action.Kind(kind), fees); err != nil {
			return err
		}
	}

	for _, account := range g.Accounts {
		addr, err := g.parseAddress(account.Address)
		if err != nil {
			return fmt.Errorf("parsing account address: %w", err)
		}
		if err := state.PutBalance(tx, addr, native, account.Balance); err != nil {
			return err
		}
	}

	validators := make([]state.Validator, 0, len(g.Validators))
	for _, v := range g.Validators {
		key, err := parseVerificationKey(v.VerificationKey)
		if err != nil {
			return fmt.Errorf("parsing validator key: %w", err)
		}
		validators = append(validators, state.Validator{VerificationKey: key, Power: v.Power})
	}
	return state.PutValidatorSet(tx, state.NewValidatorSet(validators...))
}

// parseAddress decodes a bech32m address and checks it carries the chain's
// base prefix.
func (g *Genesis) parseAddress(s string) (types.Address, error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, err
	}
	if addr.Prefix() != g.Prefixes.Base {
		return types.Address{}, fmt.Errorf("address has prefix `%s` but only `%s` is permitted", addr.Prefix(), g.Prefixes.Base)
	}
	return addr, nil
}

func parseVerificationKey(s string) (types.VerificationKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return types.VerificationKey{}, fmt.Errorf("decoding hex verification key: %w", err)
	}
	return types.VerificationKeyFromBytes(raw)
}
