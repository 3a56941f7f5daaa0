package tcn

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
)

// MemoType describes the intended format of the contents of a
// report's memo field.
type MemoType uint8

const (
	// CoEpiV1 is the CoEpi symptom self-report format, version 1.
	CoEpiV1 MemoType = 0
	// CovidWatchV1 is the CovidWatch test data format, version 1.
	CovidWatchV1 MemoType = 1
	// MemoTypeReserved is reserved for future use. It is never
	// accepted on parse.
	MemoTypeReserved MemoType = 0xff
)

// String implements fmt.Stringer.
func (t MemoType) String() string {
	switch t {
	case CoEpiV1:
		return "CoEpiV1"
	case CovidWatchV1:
		return "CovidWatchV1"
	case MemoTypeReserved:
		return "Reserved"
	default:
		return "Unknown"
	}
}

// memoTypeFromWire converts a parsed discriminant, rejecting
// everything that is not a known format.
func memoTypeFromWire(t uint8) (MemoType, error) {
	switch MemoType(t) {
	case CoEpiV1, CovidWatchV1:
		return MemoType(t), nil
	default:
		return 0, &UnknownMemoTypeError{Type: t}
	}
}

// Report discloses a contiguous range of temporary contact
// numbers together with a typed memo describing the reason for
// disclosure.
//
// A report is self-contained: it carries enough material for
// any recipient to recompute the disclosed numbers without
// reference to the authorization key that produced them.
type Report struct {
	rvk      [32]byte
	tckBytes [32]byte
	// Invariant: j1 >= 1. The zeroth ratchet state is never
	// disclosable.
	j1       uint16
	j2       uint16
	memoType MemoType
	memoData []byte
}

// StartIndex returns j1, the index of the first disclosed
// temporary contact number.
func (r *Report) StartIndex() uint16 {
	return r.j1
}

// EndIndex returns j2, the index past the last number other
// users should check. It is advisory only; see
// TemporaryContactNumbers.
func (r *Report) EndIndex() uint16 {
	return r.j2
}

// MemoType returns the type of the memo field.
func (r *Report) MemoType() MemoType {
	return r.memoType
}

// MemoData returns the memo contents.
func (r *Report) MemoData() []byte {
	return r.memoData
}

// TemporaryContactNumbers returns an iterator over the numbers
// disclosed by the report, tcn_{j1} through tcn_{j2-1}.
//
// Disclosure is one-sided: anyone holding the report can keep
// ratcheting past j2 and recompute every number from j1 onward.
// The end index bounds how far recipients are advised to match,
// not what the report reveals.
func (r *Report) TemporaryContactNumbers() *ContactNumberIterator {
	tck := TemporaryContactKey{
		// Does not underflow: j1 >= 1.
		index:    r.j1 - 1,
		rvk:      r.rvk,
		tckBytes: r.tckBytes,
	}
	// One step recovers tck_{j1}. Cannot exhaust: j1-1 < MaxRatchetIndex.
	tck, _ = tck.Ratchet()
	return &ContactNumberIterator{tck: tck, end: r.j2}
}

// ContactNumberIterator lazily recomputes the temporary contact
// numbers disclosed by a report, one ratchet step at a time.
type ContactNumberIterator struct {
	tck TemporaryContactKey
	end uint16
}

// Next returns the next disclosed number. ok is false once the
// sequence is exhausted.
func (it *ContactNumberIterator) Next() (tcn TemporaryContactNumber, ok bool) {
	if it.tck.index >= it.end {
		return TemporaryContactNumber{}, false
	}
	tcn = it.tck.TemporaryContactNumber()
	// Cannot exhaust: the emitted index is at most j2-1 <= 65534.
	it.tck, _ = it.tck.Ratchet()
	return tcn, true
}

// CreateReport discloses the temporary contact numbers with
// indices in [j1, j2), half-open, and signs the result.
//
// A zero j1 is treated as 1, preserving the invariant that the
// seed state is never disclosed. The memo data must be at most
// MaxMemoSize bytes.
//
// Reports are unlinkable from each other only up to the memo
// field: identical high-entropy memo contents will link the
// reports carrying them.
func (k *ReportAuthorizationKey) CreateReport(memoType MemoType, memoData []byte, j1, j2 uint16) (*SignedReport, error) {
	if len(memoData) > MaxMemoSize {
		return nil, &OversizeMemoError{Len: len(memoData)}
	}
	if j1 == 0 {
		j1 = 1
	}

	// Recompute tck_{j1-1} from the seed. Reports are created
	// infrequently, so redoing j1-1 hashes beats requiring the
	// caller to retain intermediate chain state.
	tck := k.seedTemporaryContactKey()
	for i := j1 - 1; i > 0; i-- {
		tck, _ = tck.Ratchet()
	}

	report := Report{
		rvk:      k.rvk,
		tckBytes: tck.tckBytes,
		j1:       j1,
		j2:       j2,
		memoType: memoType,
		memoData: append([]byte(nil), memoData...),
	}

	var buf bytes.Buffer
	if err := report.Write(&buf); err != nil {
		return nil, err
	}
	sr := &SignedReport{report: report}
	copy(sr.sig[:], ed25519.Sign(ed25519.NewKeyFromSeed(k.rak[:]), buf.Bytes()))
	return sr, nil
}

// SignedReport is a report together with a signature binding it
// to the authorization key that seeded its chain.
type SignedReport struct {
	report Report
	sig    [ed25519.SignatureSize]byte
}

// Verify checks the source integrity of the report, returning
// the enclosed Report on success and
// ErrReportVerificationFailed on any failure.
//
// The enclosed report is re-serialized and the signature is
// checked over those canonical bytes rather than over whatever
// arrived on the wire, so a malleable encoding cannot tunnel
// through verification. The verification key must decode to a
// canonical curve point.
func (sr *SignedReport) Verify() (*Report, error) {
	var buf bytes.Buffer
	if err := sr.report.Write(&buf); err != nil {
		return nil, err
	}
	// SetBytes accepts non-canonical encodings, so decode and
	// compare against the re-encoding to reject them.
	point, err := new(edwards25519.Point).SetBytes(sr.report.rvk[:])
	if err != nil || !bytes.Equal(point.Bytes(), sr.report.rvk[:]) {
		return nil, ErrReportVerificationFailed
	}
	if !ed25519.Verify(ed25519.PublicKey(sr.report.rvk[:]), buf.Bytes(), sr.sig[:]) {
		return nil, ErrReportVerificationFailed
	}
	report := sr.report
	report.memoData = append([]byte(nil), sr.report.memoData...)
	return &report, nil
}
