package reward

import (
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/oriumgames/titanium/nbthandler"
)

// SyncMessage carries a simple ledger from the server to clients.
type SyncMessage struct {
	Data nbthandler.Compound
}

// Encode returns the message as network little endian NBT, the encoding
// Bedrock uses on the wire.
func (m SyncMessage) Encode() ([]byte, error) {
	b, err := nbt.Marshal(m.Data)
	if err != nil {
		return nil, fmt.Errorf("encode sync message: %w", err)
	}
	return b, nil
}

// DecodeSyncMessage reverses SyncMessage.Encode.
func DecodeSyncMessage(b []byte) (SyncMessage, error) {
	data := map[string]any{}
	if err := nbt.Unmarshal(b, &data); err != nil {
		return SyncMessage{}, fmt.Errorf("decode sync message: %w", err)
	}
	return SyncMessage{Data: data}, nil
}

// Snapshot decodes the ledger carried by the message.
func (m SyncMessage) Snapshot() (Snapshot, error) {
	return DecodeSnapshot(m.Data)
}

// Broadcaster delivers sync messages to every connected client. Delivery is
// fire and forget.
type Broadcaster interface {
	Broadcast(msg SyncMessage)
}

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(msg SyncMessage)

func (f BroadcasterFunc) Broadcast(msg SyncMessage) { f(msg) }

// Broadcasters fans a message out to several broadcasters in order.
type Broadcasters []Broadcaster

func (b Broadcasters) Broadcast(msg SyncMessage) {
	for _, br := range b {
		if br != nil {
			br.Broadcast(msg)
		}
	}
}
