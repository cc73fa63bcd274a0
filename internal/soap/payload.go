package soap

import (
	"fmt"
	"io"
)

// payload is a serialized request body with a replayable cursor. The HTTP
// client may restart the body read from an arbitrary offset after an
// authentication round trip, so the payload must be seekable.
type payload struct {
	data []byte
	off  int64
}

func newPayload(s string) *payload {
	return &payload{data: []byte(s)}
}

func (p *payload) Read(b []byte) (int, error) {
	if p.off >= int64(len(p.data)) {
		return 0, io.EOF
	}

	n := copy(b, p.data[p.off:])
	p.off += int64(n)

	return n, nil
}

// Seek repositions the cursor. Positions outside [0, len] fail without
// moving the cursor.
func (p *payload) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = p.off + offset
	case io.SeekEnd:
		abs = int64(len(p.data)) + offset
	default:
		return p.off, fmt.Errorf("invalid seek whence %d", whence)
	}

	if abs < 0 || abs > int64(len(p.data)) {
		return p.off, fmt.Errorf("seek position %d outside payload", abs)
	}

	p.off = abs

	return abs, nil
}

func (p *payload) Len() int {
	return len(p.data)
}
