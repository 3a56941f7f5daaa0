package tcn

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReadWriteRoundTrip serializes every wire type, reads it
// back, and serializes again, checking byte identity.
func TestReadWriteRoundTrip(t *testing.T) {
	k, err := GenerateReportAuthorizationKey(rand.Reader)
	require.NoError(t, err)

	t.Run("ReportAuthorizationKey", func(t *testing.T) {
		var buf1, buf2 bytes.Buffer
		require.NoError(t, k.Write(&buf1))
		require.Len(t, buf1.Bytes(), 32)

		parsed, err := ReadReportAuthorizationKey(bytes.NewReader(buf1.Bytes()))
		require.NoError(t, err)
		require.NoError(t, parsed.Write(&buf2))
		require.Equal(t, buf1.Bytes(), buf2.Bytes())
		require.Equal(t, k.VerificationKey(), parsed.VerificationKey())
	})

	t.Run("TemporaryContactKey", func(t *testing.T) {
		tck := k.InitialTemporaryContactKey()

		var buf1, buf2 bytes.Buffer
		require.NoError(t, tck.Write(&buf1))
		require.Len(t, buf1.Bytes(), 66)

		parsed, err := ReadTemporaryContactKey(bytes.NewReader(buf1.Bytes()))
		require.NoError(t, err)
		require.Equal(t, tck.Index(), parsed.Index())
		require.NoError(t, parsed.Write(&buf2))
		require.Equal(t, buf1.Bytes(), buf2.Bytes())
	})

	t.Run("Report", func(t *testing.T) {
		sr, err := k.CreateReport(CoEpiV1, []byte("symptom data"), 20, 100)
		require.NoError(t, err)
		report, err := sr.Verify()
		require.NoError(t, err)

		var buf1, buf2 bytes.Buffer
		require.NoError(t, report.Write(&buf1))
		require.Len(t, buf1.Bytes(), reportHeaderSize+len("symptom data"))

		parsed, err := ReadReport(bytes.NewReader(buf1.Bytes()))
		require.NoError(t, err)
		require.NoError(t, parsed.Write(&buf2))
		require.Equal(t, buf1.Bytes(), buf2.Bytes())
	})

	t.Run("SignedReport", func(t *testing.T) {
		sr, err := k.CreateReport(CovidWatchV1, []byte("test data"), 1, 50)
		require.NoError(t, err)

		var buf1, buf2 bytes.Buffer
		require.NoError(t, sr.Write(&buf1))

		parsed, err := ReadSignedReport(bytes.NewReader(buf1.Bytes()))
		require.NoError(t, err)
		require.NoError(t, parsed.Write(&buf2))
		require.Equal(t, buf1.Bytes(), buf2.Bytes())

		_, err = parsed.Verify()
		require.NoError(t, err)
	})
}

// TestReportWireLayout pins the field offsets of the report
// encoding.
func TestReportWireLayout(t *testing.T) {
	r := Report{
		j1:       0x0102,
		j2:       0x0304,
		memoType: CovidWatchV1,
		memoData: []byte{0xaa, 0xbb},
	}
	for i := range r.rvk {
		r.rvk[i] = 0x11
	}
	for i := range r.tckBytes {
		r.tckBytes[i] = 0x22
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	b := buf.Bytes()

	require.Len(t, b, 72)
	require.Equal(t, bytes.Repeat([]byte{0x11}, 32), b[0:32])
	require.Equal(t, bytes.Repeat([]byte{0x22}, 32), b[32:64])
	// Indices are little-endian.
	require.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, b[64:68])
	require.Equal(t, []byte{0x01, 0x02, 0xaa, 0xbb}, b[68:72])
}

func validReportBytes(t *testing.T) []byte {
	t.Helper()
	k, err := GenerateReportAuthorizationKey(rand.Reader)
	require.NoError(t, err)
	sr, err := k.CreateReport(CoEpiV1, []byte("memo"), 2, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sr.report.Write(&buf))
	return buf.Bytes()
}

func TestReadReportRejectsZeroStartIndex(t *testing.T) {
	b := validReportBytes(t)
	b[64], b[65] = 0, 0

	_, err := ReadReport(bytes.NewReader(b))
	require.ErrorIs(t, err, ErrInvalidReportIndex)
}

func TestReadReportRejectsUnknownMemoType(t *testing.T) {
	for _, memoType := range []byte{2, 0x7f, 0xff} {
		b := validReportBytes(t)
		b[68] = memoType

		_, err := ReadReport(bytes.NewReader(b))
		var unknown *UnknownMemoTypeError
		require.ErrorAs(t, err, &unknown)
		require.Equal(t, memoType, unknown.Type)
	}
}

// An unknown memo type is reported even when the start index is
// also invalid; the memo discriminant is examined first.
func TestReadReportRejectPrecedence(t *testing.T) {
	b := validReportBytes(t)
	b[64], b[65] = 0, 0
	b[68] = 0xff

	_, err := ReadReport(bytes.NewReader(b))
	var unknown *UnknownMemoTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestReadReportTruncated(t *testing.T) {
	b := validReportBytes(t)
	for _, n := range []int{0, 1, 31, 64, 69, len(b) - 1} {
		_, err := ReadReport(bytes.NewReader(b[:n]))
		require.Error(t, err, "truncated to %d bytes", n)
		require.NotErrorIs(t, err, ErrInvalidReportIndex)
	}
}

func TestReadSignedReportTruncatedSignature(t *testing.T) {
	k, err := GenerateReportAuthorizationKey(rand.Reader)
	require.NoError(t, err)
	sr, err := k.CreateReport(CoEpiV1, nil, 1, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sr.Write(&buf))

	_, err = ReadSignedReport(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// errWriter fails after n bytes to exercise stream error
// propagation.
type errWriter struct {
	n   int
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		return 0, w.err
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWritePropagatesStreamErrors(t *testing.T) {
	k, err := GenerateReportAuthorizationKey(rand.Reader)
	require.NoError(t, err)
	sr, err := k.CreateReport(CoEpiV1, []byte("memo"), 1, 5)
	require.NoError(t, err)

	broken := io.ErrClosedPipe
	require.ErrorIs(t, sr.Write(&errWriter{n: 0, err: broken}), broken)
	require.ErrorIs(t, sr.Write(&errWriter{n: 74, err: broken}), broken)

	tck := k.InitialTemporaryContactKey()
	require.ErrorIs(t, tck.Write(&errWriter{n: 0, err: broken}), broken)
	require.ErrorIs(t, k.Write(&errWriter{n: 0, err: broken}), broken)
}
