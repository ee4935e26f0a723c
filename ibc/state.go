package ibc

import (
	"encoding/json"
	"fmt"

	"github.com/blockberries/stateberry/ledger"
)

func clientStateKey(clientID string) string {
	return "ibc/clients/" + clientID + "/client_state"
}

func consensusStateKey(clientID string, height Height) string {
	return "ibc/clients/" + clientID + "/consensus/" + height.String()
}

const clientCounterKey = "ibc/client_counter"

// PutClientState stores a client's state under its id.
func PutClientState(s ledger.StateWriter, clientID string, cs ClientState) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("encoding client state: %w", err)
	}
	return s.Put(clientStateKey(clientID), raw)
}

// GetClientState returns the stored state of the client.
func GetClientState(s ledger.StateReader, clientID string) (ClientState, error) {
	raw, err := s.Get(clientStateKey(clientID))
	if err != nil {
		return ClientState{}, fmt.Errorf("reading client state from storage: %w", err)
	}
	if raw == nil {
		return ClientState{}, fmt.Errorf("client `%s` not found", clientID)
	}
	var cs ClientState
	if err := json.Unmarshal(raw, &cs); err != nil {
		return ClientState{}, fmt.Errorf("decoding client state: %w", err)
	}
	return cs, nil
}

// PutConsensusState stores a verified consensus state for the client at the
// given height.
func PutConsensusState(s ledger.StateWriter, clientID string, height Height, cs ConsensusState) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("encoding consensus state: %w", err)
	}
	return s.Put(consensusStateKey(clientID, height), raw)
}

// GetConsensusState returns the client's consensus state at the given
// height, or nil if none is stored there.
func GetConsensusState(s ledger.StateReader, clientID string, height Height) (*ConsensusState, error) {
	raw, err := s.Get(consensusStateKey(clientID, height))
	if err != nil {
		return nil, fmt.Errorf("reading consensus state from storage: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var cs ConsensusState
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("decoding consensus state: %w", err)
	}
	return &cs, nil
}

// nextClientID allocates the next tendermint client identifier.
func nextClientID(s ledger.StateWriter) (string, error) {
	raw, err := s.Get(clientCounterKey)
	if err != nil {
		return "", fmt.Errorf("reading client counter from storage: %w", err)
	}
	var counter uint64
	if raw != nil {
		if _, err := fmt.Sscanf(string(raw), "%d", &counter); err != nil {
			return "", fmt.Errorf("decoding client counter: %w", err)
		}
	}
	if err := s.Put(clientCounterKey, []byte(fmt.Sprintf("%d", counter+1))); err != nil {
		return "", err
	}
	return fmt.Sprintf("07-tendermint-%d", counter), nil
}
