// Package tcn implements the TCN protocol for decentralized,
// privacy-preserving contact tracing.
//
// Overview
//
// What follows is a high-level overview of the protocol; the
// details live in the TCN coalition's protocol description
// [tcn].
//
// Participating devices derive a chain of short pseudonymous
// 128-bit temporary contact numbers (TCNs) and broadcast them
// over short-range radio. Devices in proximity record the
// numbers they observe. Because each number is an opaque hash
// output, observations reveal nothing about the device that
// broadcast them.
//
// Key Ratchet
//
// Each chain is rooted in a report authorization key (rak), an
// Ed25519 signing key. Its public half, the report verification
// key (rvk), both verifies reports and binds every step of the
// ratchet to the chain that produced it:
//
//    tck_0 = H_TCK(rak)
//    tck_i = H_TCK(rvk || tck_{i-1})
//
// where H_TCK is SHA-256 under a fixed domain separator. Each
// temporary contact key yields one broadcast number:
//
//    tcn_i = H_TCN(le_u16(i) || tck_i)[0..16]
//
// The ratchet is one-way: holding tck_i permits computing every
// subsequent key but none of the prior ones. tck_0 is an
// internal seed state; the first key handed to callers is
// tck_1.
//
// Reports
//
// To disclose past contacts, a device publishes a report
// containing rvk, the ratchet state one step before the first
// disclosed index, the index range, and a short typed memo. Any
// recipient can recompute the disclosed numbers from the report
// alone and match them against its observations. The report is
// signed by rak over its canonical serialization, so recipients
// can check that it was produced by the holder of the chain it
// discloses.
//
// Note that a report discloses every number from the start
// index onward: the end index only advises recipients how far
// to match. Reports are unlinkable from each other only up to
// the memo field; identical high-entropy memo contents will
// link the reports that carry them.
//
// References
//
// More information can be found in the following links.
//
//    [tcn]: https://github.com/TCNCoalition/TCN
//
package tcn

// Domain separators for the two hash derivations. Fixed-length
// prefixes keep ratchet-update preimages and number-derivation
// preimages disjoint.
var (
	hTCKDomainSep = []byte("H_TCK")
	hTCNDomainSep = []byte("H_TCN")
)

// TemporaryContactNumber is a pseudorandom 128-bit value
// broadcast to nearby devices over short-range radio.
type TemporaryContactNumber [16]byte
