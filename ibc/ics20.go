package ibc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

// TransferPort is the ICS-20 port identifier.
const TransferPort = "transfer"

// FungibleTokenPacketData is the ICS-20 packet payload.
type FungibleTokenPacketData struct {
	Denom    string `json:"denom"`
	Amount   string `json:"amount"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Memo     string `json:"memo,omitempty"`
}

// Packet is an outbound IBC packet on a transfer channel.
type Packet struct {
	Sequence           uint64
	SourcePort         string
	SourceChannel      string
	DestinationPort    string
	DestinationChannel string
	Data               []byte
	TimeoutHeight      Height
	TimeoutTime        uint64
}

// IsSourceChain reports whether this chain is the token's source for a send
// over the given channel. A denomination whose trace begins with the
// outbound port/channel pair originated on the counterparty, so sending it
// back burns the voucher; any other denomination is escrowed here.
func IsSourceChain(asset types.Asset, port, channel string) bool {
	return !asset.HasLeadingPortChannel(port, channel)
}

func channelSequenceKey(channel string) string {
	return "ibc/channels/" + channel + "/sequence"
}

// NextPacketSequence allocates the next send sequence for the channel.
func NextPacketSequence(s ledger.StateWriter, channel string) (uint64, error) {
	raw, err := s.Get(channelSequenceKey(channel))
	if err != nil {
		return 0, fmt.Errorf("reading packet sequence from storage: %w", err)
	}
	var seq uint64 = 1
	if raw != nil {
		stored, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decoding packet sequence: %w", err)
		}
		seq = stored + 1
	}
	if err := s.Put(channelSequenceKey(channel), []byte(strconv.FormatUint(seq, 10))); err != nil {
		return 0, err
	}
	return seq, nil
}

// SendTransferPacket builds and records an outbound ICS-20 packet on the
// given channel. The escrow or burn of the sent funds is the caller's
// responsibility.
func SendTransferPacket(s ledger.StateWriter, channel string, data FungibleTokenPacketData, timeoutHeight Height, timeoutTime uint64) (Packet, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Packet{}, fmt.Errorf("encoding packet data: %w", err)
	}
	seq, err := NextPacketSequence(s, channel)
	if err != nil {
		return Packet{}, err
	}
	packet := Packet{
		Sequence:      seq,
		SourcePort:    TransferPort,
		SourceChannel: channel,
		Data:          payload,
		TimeoutHeight: timeoutHeight,
		TimeoutTime:   timeoutTime,
	}
	s.Record(ledger.NewEvent("send_packet").
		AddStringAttribute("packet_src_port", packet.SourcePort).
		AddStringAttribute("packet_src_channel", packet.SourceChannel).
		AddStringAttribute("packet_sequence", strconv.FormatUint(packet.Sequence, 10)).
		AddStringAttribute("packet_data", string(payload)))
	return packet, nil
}
