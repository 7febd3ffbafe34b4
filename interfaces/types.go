// Package interfaces defines the core interfaces and types for the provenance registries.
// It provides the contract between different components without implementation details.
package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Principal is an opaque, already-authenticated caller identity (an account address).
type Principal [20]byte

// NewPrincipalFromBytes creates a principal from a raw 20-byte address.
func NewPrincipalFromBytes(addr []byte) (Principal, error) {
	if len(addr) != 20 {
		return Principal{}, errors.New("invalid principal length: must be 20 bytes")
	}

	var res Principal
	copy(res[:], addr)
	return res, nil
}

// NewPrincipalFromHex parses a 40-character hex address, with or without 0x prefix.
func NewPrincipalFromHex(addr string) (Principal, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(clean) != 40 {
		return Principal{}, errors.New("invalid principal length: hex string must be 40 characters")
	}
	if _, err := hex.DecodeString(clean); err != nil {
		return Principal{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return Principal(common.HexToAddress(clean)), nil
}

// String returns the EIP-55 checksummed hex representation.
func (p Principal) String() string {
	return common.Address(p).Hex()
}

// Bytes returns the raw 20-byte address.
func (p Principal) Bytes() []byte {
	return p[:]
}

// IsZero reports whether p is the all-zero address.
func (p Principal) IsZero() bool {
	return p == Principal{}
}

// MarshalText renders the principal as checksummed hex, which also makes it usable as a JSON map key.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a hex principal.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := NewPrincipalFromHex(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// OrganismID identifies an organism whose biosafety status is attested.
type OrganismID uint64

// SequenceID identifies a gene-sequence record. Zero is never assigned.
type SequenceID uint64

// DesignID identifies an organism-design record. Zero is never assigned.
type DesignID uint64

// Verification is the attestation state of an organism.
// An organism that was never verified reads as the zero value.
type Verification struct {
	IsVerified bool       `json:"is_verified"`
	Verifier   *Principal `json:"verifier"`
}

// Sequence is a registered gene sequence.
type Sequence struct {
	Owner      Principal `json:"owner"`
	Payload    string    `json:"sequence"`
	IsLicensed bool      `json:"is_licensed"`
}

// Design is an organism design. Contributors[0] is the creator.
// GeneSequences holds weak references to sequence ids that are not dereferenced.
type Design struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Contributors  []Principal  `json:"contributors"`
	GeneSequences []SequenceID `json:"gene_sequences"`
}

// Creator returns the principal that created the design.
func (d *Design) Creator() Principal {
	if len(d.Contributors) == 0 {
		return Principal{}
	}
	return d.Contributors[0]
}

// HasContributor reports whether p appears anywhere in the contributor list.
func (d *Design) HasContributor(p Principal) bool {
	for _, c := range d.Contributors {
		if c == p {
			return true
		}
	}
	return false
}

// Clone returns a deep copy with non-nil slices.
func (d Design) Clone() Design {
	contributors := make([]Principal, len(d.Contributors))
	copy(contributors, d.Contributors)
	sequences := make([]SequenceID, len(d.GeneSequences))
	copy(sequences, d.GeneSequences)

	d.Contributors = contributors
	d.GeneSequences = sequences
	return d
}
