package soap

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRead(t *testing.T) {
	p := newPayload("hello")

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// Subsequent reads stay at EOF.
	n, err := p.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestPayloadSeek(t *testing.T) {
	p := newPayload("abcdef")

	tests := []struct {
		name   string
		offset int64
		whence int
		want   int64
	}{
		{"start", 2, io.SeekStart, 2},
		{"current", 1, io.SeekCurrent, 3},
		{"current negative", -3, io.SeekCurrent, 0},
		{"end", -2, io.SeekEnd, 4},
		{"end of data", 0, io.SeekEnd, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := p.Seek(tt.offset, tt.whence)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestPayloadSeekOutOfRange(t *testing.T) {
	p := newPayload("abcdef")

	_, err := p.Seek(3, io.SeekStart)
	require.NoError(t, err)

	// Out-of-range seeks fail and leave the cursor where it was.
	_, err = p.Seek(-1, io.SeekStart)
	assert.Error(t, err)
	_, err = p.Seek(7, io.SeekStart)
	assert.Error(t, err)
	_, err = p.Seek(99, io.SeekCurrent)
	assert.Error(t, err)

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, "def", string(data))
}

func TestPayloadRewind(t *testing.T) {
	p := newPayload("abc")

	first, err := io.ReadAll(p)
	require.NoError(t, err)

	_, err = p.Seek(0, io.SeekStart)
	require.NoError(t, err)

	second, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
