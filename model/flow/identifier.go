package flow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Identifier represents a 32-byte unique identifier for a node or an entity
// derived from its canonical encoding.
type Identifier [32]byte

// ZeroID is the lowest value in the 32-byte ID space.
var ZeroID = Identifier{}

// HexStringToIdentifier converts a hex string to an identifier. The input
// must be 64 characters long and contain only valid hex characters.
func HexStringToIdentifier(hexString string) (Identifier, error) {
	var identifier Identifier
	i, err := hex.Decode(identifier[:], []byte(hexString))
	if err != nil {
		return identifier, err
	}
	if i != 32 {
		return identifier, fmt.Errorf("malformed input, expected 32 bytes (64 characters), decoded %d", i)
	}
	return identifier, nil
}

// String returns the hex string representation of the identifier.
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// Format handles formatting of id for different verbs. This is called when
// formatting an identifier with fmt.
func (id Identifier) Format(state fmt.State, verb rune) {
	switch verb {
	case 'x', 's', 'v':
		_, _ = state.Write([]byte(id.String()))
	default:
		_, _ = state.Write([]byte(fmt.Sprintf("%%!%c(%s=%s)", verb, "flow.Identifier", id.String())))
	}
}

// MarshalText implements encoding.TextMarshaler, allowing identifiers to be
// used as map keys in encoded form.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	decoded, err := HexStringToIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}

// HashToID returns the identifier corresponding to the given hash, trimming
// or zero-padding to 32 bytes.
func HashToID(hash []byte) Identifier {
	var id Identifier
	copy(id[:], hash)
	return id
}

// MakeID creates an ID from the canonical encoding of an entity.
func MakeID(encoding []byte) Identifier {
	return Identifier(sha256.Sum256(encoding))
}
