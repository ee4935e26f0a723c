package ibc

import (
	"fmt"
	"time"

	"github.com/blockberries/stateberry/ledger"
)

// RelayMessage is the closed set of IBC messages the engine relays. Packet
// messages (recv, acknowledge, timeout) belong to the external IBC handler;
// the engine itself handles the client lifecycle.
type RelayMessage interface {
	relayMessage()
}

// MsgCreateClient initializes a new light client from its initial state.
type MsgCreateClient struct {
	ClientState    ClientState
	ConsensusState ConsensusState
}

func (MsgCreateClient) relayMessage() {}

// MsgUpdateClient advances an existing light client with a verified header.
type MsgUpdateClient struct {
	ClientID string
	Header   Header
}

func (MsgUpdateClient) relayMessage() {}

// Header is a verified counterparty header used to update a client.
type Header struct {
	Height             Height
	Timestamp          time.Time
	Root               []byte
	NextValidatorsHash []byte
}

// HandleRelay applies a relay message to the ledger. now is the consensus
// timestamp of the block being executed.
func HandleRelay(s ledger.StateWriter, msg RelayMessage, now time.Time) error {
	switch m := msg.(type) {
	case MsgCreateClient:
		return handleCreateClient(s, m)
	case MsgUpdateClient:
		return handleUpdateClient(s, m, now)
	default:
		return fmt.Errorf("unsupported relay message type %T", msg)
	}
}

func handleCreateClient(s ledger.StateWriter, msg MsgCreateClient) error {
	if msg.ClientState.LatestHeight.IsZero() {
		return fmt.Errorf("client state must have a non-zero latest height")
	}
	if msg.ClientState.TrustingPeriod <= 0 {
		return fmt.Errorf("client state must have a positive trusting period")
	}
	clientID, err := nextClientID(s)
	if err != nil {
		return err
	}
	if err := PutClientState(s, clientID, msg.ClientState); err != nil {
		return err
	}
	if err := PutConsensusState(s, clientID, msg.ClientState.LatestHeight, msg.ConsensusState); err != nil {
		return err
	}
	s.Record(ledger.NewEvent("create_client").
		AddStringAttribute("client_id", clientID).
		AddStringAttribute("consensus_height", msg.ClientState.LatestHeight.String()))
	return nil
}

func handleUpdateClient(s ledger.StateWriter, msg MsgUpdateClient, now time.Time) error {
	cs, err := GetClientState(s, msg.ClientID)
	if err != nil {
		return err
	}
	latest, err := GetConsensusState(s, msg.ClientID, cs.LatestHeight)
	if err != nil {
		return err
	}
	if status := Status(cs, latest, now); status != ClientActive {
		return fmt.Errorf("cannot update client `%s` with status %s", msg.ClientID, status)
	}
	if !msg.Header.Height.After(cs.LatestHeight) {
		return fmt.Errorf("header height %s must be greater than client latest height %s",
			msg.Header.Height, cs.LatestHeight)
	}
	cs.LatestHeight = msg.Header.Height
	if err := PutClientState(s, msg.ClientID, cs); err != nil {
		return err
	}
	consensus := ConsensusState{
		Timestamp:          msg.Header.Timestamp,
		Root:               msg.Header.Root,
		NextValidatorsHash: msg.Header.NextValidatorsHash,
	}
	if err := PutConsensusState(s, msg.ClientID, msg.Header.Height, consensus); err != nil {
		return err
	}
	s.Record(ledger.NewEvent("update_client").
		AddStringAttribute("client_id", msg.ClientID).
		AddStringAttribute("consensus_height", msg.Header.Height.String()))
	return nil
}
