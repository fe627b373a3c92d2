package models

import (
	"bytes"

	"github.com/google/uuid"
)

// UUIDSize is the fixed width of an identity buffer, terminating NUL included.
const UUIDSize = 64

// UUID is a fixed-size identity buffer read as a NUL-terminated ASCII string.
// Entities and component types share this type.
type UUID [UUIDSize]byte

// Nil is the reserved "no entity" / "end of list" identity.
var Nil UUID

// componentTypeNamespace seeds name-derived identities so every subsystem that
// names "transform" lands on the same UUID.
var componentTypeNamespace = uuid.MustParse("8f4c2a61-3b0e-5d7a-9c41-6e2f0b9d7a13")

// NewUUID mints a random entity identity.
func NewUUID() UUID {
	return UUIDFromString(uuid.NewString())
}

// IDFromName derives a component-type identity from a human-readable name.
func IDFromName(name string) UUID {
	return UUIDFromString(uuid.NewSHA1(componentTypeNamespace, []byte(name)).String())
}

// UUIDFromString copies s into a UUID, truncating to UUIDSize-1 bytes.
func UUIDFromString(s string) UUID {
	var id UUID
	copy(id[:UUIDSize-1], s)
	return id
}

// Bytes returns the bytes before the terminating NUL.
func (id UUID) Bytes() []byte {
	if n := bytes.IndexByte(id[:], 0); n >= 0 {
		return id[:n]
	}
	return id[:]
}

func (id UUID) String() string {
	return string(id.Bytes())
}

// IsNil reports whether id is the empty-string sentinel.
func (id UUID) IsNil() bool {
	return id[0] == 0
}

// Compare orders two identities strcmp-style; zero means equal.
func Compare(a, b UUID) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}
