package messages

import (
	"encoding/binary"

	"github.com/onflow/flow-epochs/model/flow"
)

// WhiteboardMessage is a single entry on the DKG whiteboard. The content is
// opaque to the coordinator; participants are responsible for interpreting
// it according to the underlying key-generation protocol.
type WhiteboardMessage struct {
	NodeID  flow.Identifier
	Content string
}

// NewWhiteboardMessage creates a new whiteboard message attributed to the
// given node.
func NewWhiteboardMessage(nodeID flow.Identifier, content string) WhiteboardMessage {
	return WhiteboardMessage{
		NodeID:  nodeID,
		Content: content,
	}
}

// ResultVector is the ordered list of public key shares a participant submits
// as its final result for a DKG round. Entries are opaque strings; two
// vectors are the same result iff they are element-wise equal.
type ResultVector []string

// ID returns a unique identifier for the vector, computed over a canonical
// length-prefixed encoding so that no two distinct vectors share an ID.
func (v ResultVector) ID() flow.Identifier {
	var enc []byte
	enc = binary.BigEndian.AppendUint32(enc, uint32(len(v)))
	for _, key := range v {
		enc = binary.BigEndian.AppendUint32(enc, uint32(len(key)))
		enc = append(enc, key...)
	}
	return flow.MakeID(enc)
}

// Copy returns a copy of the receiver.
func (v ResultVector) Copy() ResultVector {
	dup := make(ResultVector, 0, len(v))
	dup = append(dup, v...)
	return dup
}
