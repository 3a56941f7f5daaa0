package tcn

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// MaxRatchetIndex is the largest index a temporary contact key
// chain can reach. Ratcheting past it fails, signaling that the
// report authorization key should be rotated.
const MaxRatchetIndex = 65535

// ReportAuthorizationKey authorizes publication of a report
// about a collection of derived temporary contact numbers.
//
// The key seeds exactly one ratchet chain and signs exactly one
// logical report chain.
type ReportAuthorizationKey struct {
	rak [ed25519.SeedSize]byte
	rvk [ed25519.PublicKeySize]byte
}

// GenerateReportAuthorizationKey creates a new report
// authorization key, reading exactly 32 bytes of entropy from
// rand.
//
// The reader must be cryptographically secure, such as
// crypto/rand.Reader. It is not retained past this call.
func GenerateReportAuthorizationKey(rand io.Reader) (*ReportAuthorizationKey, error) {
	var k ReportAuthorizationKey
	if _, err := io.ReadFull(rand, k.rak[:]); err != nil {
		return nil, fmt.Errorf("tcn: generating report authorization key: %w", err)
	}
	k.derivePublic()
	return &k, nil
}

// derivePublic caches rvk from the secret bytes.
func (k *ReportAuthorizationKey) derivePublic() {
	copy(k.rvk[:], ed25519.NewKeyFromSeed(k.rak[:])[ed25519.SeedSize:])
}

// VerificationKey returns rvk, the public half of the key.
func (k *ReportAuthorizationKey) VerificationKey() [32]byte {
	return k.rvk
}

// InitialTemporaryContactKey returns tck_1, the first key in
// the chain capable of deriving a temporary contact number.
//
// The zeroth ratchet state is an internal seed; it yields no
// number and never leaves the key.
func (k *ReportAuthorizationKey) InitialTemporaryContactKey() TemporaryContactKey {
	tck, _ := k.seedTemporaryContactKey().Ratchet()
	return tck
}

// seedTemporaryContactKey computes tck_0 = H_TCK(rak).
func (k *ReportAuthorizationKey) seedTemporaryContactKey() TemporaryContactKey {
	tck := TemporaryContactKey{index: 0, rvk: k.rvk}
	h := sha256.New()
	h.Write(hTCKDomainSep)
	h.Write(k.rak[:])
	h.Sum(tck.tckBytes[:0])
	return tck
}

// Zeroize overwrites the secret key material.
func (k *ReportAuthorizationKey) Zeroize() {
	memguard.WipeBytes(k.rak[:])
}

// TemporaryContactKey is the per-index ratchet state from which
// a single temporary contact number is derived.
//
// Keys are plain values and safe to copy; Ratchet returns the
// successor rather than mutating in place. Callers should
// discard the predecessor once advanced so that a chain never
// forks.
type TemporaryContactKey struct {
	index    uint16
	rvk      [32]byte
	tckBytes [32]byte
}

// Index reports the position of this key in the ratchet chain.
func (tck *TemporaryContactKey) Index() uint16 {
	return tck.index
}

// Ratchet advances the key one step, producing the key for the
// next temporary contact number.
//
// ok is false when the chain is exhausted at MaxRatchetIndex;
// the report authorization key should then be rotated and a
// fresh chain started.
func (tck TemporaryContactKey) Ratchet() (next TemporaryContactKey, ok bool) {
	if tck.index == MaxRatchetIndex {
		return TemporaryContactKey{}, false
	}
	next = TemporaryContactKey{index: tck.index + 1, rvk: tck.rvk}
	h := sha256.New()
	h.Write(hTCKDomainSep)
	h.Write(tck.rvk[:])
	h.Write(tck.tckBytes[:])
	h.Sum(next.tckBytes[:0])
	return next, true
}

// TemporaryContactNumber derives the 128-bit broadcast number
// for this key's index. The index is mixed into the derivation
// so that distinct positions yield distinct numbers even across
// colliding key states.
func (tck *TemporaryContactKey) TemporaryContactNumber() TemporaryContactNumber {
	var le [2]byte
	binary.LittleEndian.PutUint16(le[:], tck.index)
	h := sha256.New()
	h.Write(hTCNDomainSep)
	h.Write(le[:])
	h.Write(tck.tckBytes[:])
	var tcn TemporaryContactNumber
	copy(tcn[:], h.Sum(nil))
	return tcn
}

// Zeroize overwrites the secret ratchet state.
func (tck *TemporaryContactKey) Zeroize() {
	memguard.WipeBytes(tck.tckBytes[:])
}
