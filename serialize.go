package tcn

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMemoSize is the largest memo payload a report can carry.
const MaxMemoSize = 255

// reportHeaderSize is the fixed-length portion of a serialized
// report: rvk (32) || tck (32) || j1 (2) || j2 (2) ||
// memo type (1) || memo length (1).
const reportHeaderSize = 32 + 32 + 2 + 2 + 1 + 1

// readFull fills buf from r, wrapping any stream failure.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("tcn: reading: %w", err)
	}
	return nil
}

// ReadReport parses a report from its fixed little-endian wire
// layout.
//
// It rejects unknown memo type discriminants with
// UnknownMemoTypeError and a zero start index with
// ErrInvalidReportIndex.
func ReadReport(r io.Reader) (*Report, error) {
	var hdr [reportHeaderSize]byte
	if err := readFull(r, hdr[:]); err != nil {
		return nil, err
	}

	var report Report
	copy(report.rvk[:], hdr[0:32])
	copy(report.tckBytes[:], hdr[32:64])
	report.j1 = binary.LittleEndian.Uint16(hdr[64:66])
	report.j2 = binary.LittleEndian.Uint16(hdr[66:68])

	memoType, err := memoTypeFromWire(hdr[68])
	if err != nil {
		return nil, err
	}
	report.memoType = memoType

	report.memoData = make([]byte, int(hdr[69]))
	if err := readFull(r, report.memoData); err != nil {
		return nil, err
	}

	if report.j1 == 0 {
		return nil, ErrInvalidReportIndex
	}
	return &report, nil
}

// Write serializes the report in its canonical wire layout.
//
// It fails only with OversizeMemoError or an error from the
// underlying writer.
func (r *Report) Write(w io.Writer) error {
	if len(r.memoData) > MaxMemoSize {
		return &OversizeMemoError{Len: len(r.memoData)}
	}
	buf := make([]byte, 0, reportHeaderSize+len(r.memoData))
	buf = append(buf, r.rvk[:]...)
	buf = append(buf, r.tckBytes[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, r.j1)
	buf = binary.LittleEndian.AppendUint16(buf, r.j2)
	buf = append(buf, byte(r.memoType), byte(len(r.memoData)))
	buf = append(buf, r.memoData...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("tcn: writing report: %w", err)
	}
	return nil
}

// ReadSignedReport parses a report followed by its 64-byte
// signature.
func ReadSignedReport(r io.Reader) (*SignedReport, error) {
	report, err := ReadReport(r)
	if err != nil {
		return nil, err
	}
	sr := &SignedReport{report: *report}
	if err := readFull(r, sr.sig[:]); err != nil {
		return nil, err
	}
	return sr, nil
}

// Write serializes the signed report: the report's canonical
// bytes followed by the signature.
func (sr *SignedReport) Write(w io.Writer) error {
	if err := sr.report.Write(w); err != nil {
		return err
	}
	if _, err := w.Write(sr.sig[:]); err != nil {
		return fmt.Errorf("tcn: writing signature: %w", err)
	}
	return nil
}

// ReadReportAuthorizationKey parses a report authorization key
// from its raw 32 secret bytes.
func ReadReportAuthorizationKey(r io.Reader) (*ReportAuthorizationKey, error) {
	var k ReportAuthorizationKey
	if err := readFull(r, k.rak[:]); err != nil {
		return nil, err
	}
	k.derivePublic()
	return &k, nil
}

// Write serializes the raw 32 secret bytes of the key.
func (k *ReportAuthorizationKey) Write(w io.Writer) error {
	if _, err := w.Write(k.rak[:]); err != nil {
		return fmt.Errorf("tcn: writing report authorization key: %w", err)
	}
	return nil
}

// ReadTemporaryContactKey parses a temporary contact key from
// its 66-byte wire layout: index (2, little-endian) || rvk (32)
// || tck bytes (32).
func ReadTemporaryContactKey(r io.Reader) (*TemporaryContactKey, error) {
	var buf [2 + 32 + 32]byte
	if err := readFull(r, buf[:]); err != nil {
		return nil, err
	}
	tck := &TemporaryContactKey{index: binary.LittleEndian.Uint16(buf[0:2])}
	copy(tck.rvk[:], buf[2:34])
	copy(tck.tckBytes[:], buf[34:66])
	return tck, nil
}

// Write serializes the temporary contact key in its 66-byte
// wire layout.
func (tck *TemporaryContactKey) Write(w io.Writer) error {
	var buf [2 + 32 + 32]byte
	binary.LittleEndian.PutUint16(buf[0:2], tck.index)
	copy(buf[2:34], tck.rvk[:])
	copy(buf[34:66], tck.tckBytes[:])
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("tcn: writing temporary contact key: %w", err)
	}
	return nil
}
