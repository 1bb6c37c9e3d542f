package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureWriterUnlimited(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK}

	_, err := cw.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = cw.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", cw.buf.String())
	assert.Equal(t, int64(11), cw.size)
	assert.Equal(t, "hello world", rec.Body.String(), "client always gets the full body")
}

func TestCaptureWriterLimit(t *testing.T) {
	t.Run("body within limit is fully buffered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

		_, _ = cw.Write([]byte("0123456789"))
		assert.Equal(t, int64(10), cw.size)
		assert.Equal(t, "0123456789", cw.buf.String())
		assert.False(t, cw.size > cw.limit)
	})

	t.Run("oversized single write is detectable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

		_, _ = cw.Write([]byte("0123456789"))
		assert.Equal(t, int64(10), cw.size, "size must count the whole response")
		assert.Equal(t, "0123", cw.buf.String())
		assert.True(t, cw.size > cw.limit, "overflow must be visible to the caching decision")
		assert.Equal(t, "0123456789", rec.Body.String())
	})

	t.Run("write after the limit is filled still counts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

		_, _ = cw.Write([]byte("0123456789")) // fills the buffer exactly
		_, _ = cw.Write([]byte("overflow"))

		assert.Equal(t, int64(18), cw.size)
		assert.True(t, cw.size > cw.limit,
			"an exactly-filled buffer followed by more data is an overflow, not a cacheable body")
	})
}

func TestPayloadCodecRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("X-Custom", "a")
	hdr.Add("X-Custom", "b")
	body := []byte(`{"events":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, gotBody)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, gotHdr.Values("X-Custom"))
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload(nil)
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)
	// Header length pointing past the payload end.
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 255, 255, 'x'})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte(strings.Repeat("\xff", 16)))
	assert.False(t, ok)
}
