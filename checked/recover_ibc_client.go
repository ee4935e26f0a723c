package checked

import (
	"fmt"
	"slices"
	"time"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ibc"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// RecoverIbcClient is the checked form of an ICS-26 client recovery: a
// non-active subject client adopts the volatile fields of an active
// substitute client whose trust parameters match.
type RecoverIbcClient struct {
	act action.RecoverIbcClient
	ctx TransactionContext
}

// NewRecoverIbcClient validates a client recovery against the given
// snapshot.
func NewRecoverIbcClient(act action.RecoverIbcClient, ctx TransactionContext, s ledger.StateReader) (*RecoverIbcClient, error) {
	if act.SubjectClientID == "" || act.SubstituteClientID == "" {
		return nil, fmt.Errorf("subject and substitute client ids must be set")
	}

	c := &RecoverIbcClient{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RecoverIbcClient) Kind() action.Kind { return action.KindRecoverIbcClient }

// RunMutableChecks verifies sudo authorization, the subject's and
// substitute's statuses, the height relation and the trust-parameter match.
// Height, trusting period and chain id are explicitly allowed to differ.
func (c *RecoverIbcClient) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to recover ibc clients")
	}

	now, err := state.GetBlockTimestamp(s)
	if err != nil {
		return err
	}
	subject, subjectStatus, err := clientWithStatus(s, c.act.SubjectClientID, now)
	if err != nil {
		return err
	}
	substitute, substituteStatus, err := clientWithStatus(s, c.act.SubstituteClientID, now)
	if err != nil {
		return err
	}

	if subjectStatus == ibc.ClientActive {
		return fmt.Errorf("cannot recover an active client")
	}
	if substituteStatus != ibc.ClientActive {
		return fmt.Errorf("substitute client must be active, but has status %s", substituteStatus)
	}
	if !substitute.LatestHeight.After(subject.LatestHeight) {
		return fmt.Errorf("substitute client latest height must be greater than subject client latest height")
	}
	if subject.TrustLevel != substitute.TrustLevel ||
		subject.UnbondingPeriod != substitute.UnbondingPeriod ||
		subject.MaxClockDrift != substitute.MaxClockDrift ||
		!slices.Equal(subject.ProofSpecs, substitute.ProofSpecs) ||
		!slices.Equal(subject.UpgradePath, substitute.UpgradePath) {
		return fmt.Errorf("subject client state does not match substitute client state")
	}
	return nil
}

func clientWithStatus(s ledger.StateReader, clientID string, now time.Time) (ibc.ClientState, ibc.ClientStatus, error) {
	cs, err := ibc.GetClientState(s, clientID)
	if err != nil {
		return ibc.ClientState{}, ibc.ClientUnknown, err
	}
	latest, err := ibc.GetConsensusState(s, clientID, cs.LatestHeight)
	if err != nil {
		return ibc.ClientState{}, ibc.ClientUnknown, err
	}
	return cs, ibc.Status(cs, latest, now), nil
}

// Execute copies the substitute's latest height, trusting period and chain
// id into the subject, unfreezes it, and imports the substitute's verified
// consensus state at its latest height under the subject's client id.
func (c *RecoverIbcClient) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	subject, err := ibc.GetClientState(s, c.act.SubjectClientID)
	if err != nil {
		return err
	}
	substitute, err := ibc.GetClientState(s, c.act.SubstituteClientID)
	if err != nil {
		return err
	}
	consensus, err := ibc.GetConsensusState(s, c.act.SubstituteClientID, substitute.LatestHeight)
	if err != nil {
		return err
	}

	subject.LatestHeight = substitute.LatestHeight
	subject.TrustingPeriod = substitute.TrustingPeriod
	subject.ChainID = substitute.ChainID
	subject.FrozenHeight = nil
	if err := ibc.PutClientState(s, c.act.SubjectClientID, subject); err != nil {
		return err
	}
	return ibc.PutConsensusState(s, c.act.SubjectClientID, substitute.LatestHeight, *consensus)
}
