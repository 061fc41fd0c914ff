// Package wire defines the tagged-union message exchanged between nodes
// and its on-the-wire encoding, a gob-encoded typed struct.
package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pixperk/dynamokv/types"
)

// Message is the single struct every message kind is represented as; the
// handler dispatches on Kind rather than on a type hierarchy.
type Message struct {
	TxnID   int64
	From    types.Address
	Kind    types.MessageKind
	Key     string
	Value   string
	Replica types.ReplicaRole
	Success bool
}

// Encode serializes a message to an opaque byte buffer for Transport.Send.
func Encode(m Message) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		// Encoding a plain struct of primitives cannot fail; a failure here
		// would mean Message grew a type gob can't handle.
		panic(fmt.Sprintf("wire: encode: %v", err))
	}
	return buf.Bytes()
}

// Decode deserializes a message. A malformed payload is returned as an
// error; the caller drops it silently.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&m); err != nil {
		return Message{}, err
	}
	return m, nil
}
