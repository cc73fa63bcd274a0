package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"

	"github.com/beevik/etree"
)

// CallStream performs one SOAP request whose response body is a continuous
// sequence of complete envelopes on a long-held connection. onFragment
// receives each envelope's <soap:Body> element in arrival order; returning
// false stops the stream early. CallStream blocks until the server closes
// the connection, the context is cancelled, or onFragment stops it.
func (t *Transport) CallStream(ctx context.Context, url, action, header, body string, onFragment func(*etree.Element) bool) error {
	resp, err := t.post(ctx, url, action, header, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fr := newFramer(resp.Body)

	for {
		frag, err := fr.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var syntax *xml.SyntaxError
			if errors.As(err, &syntax) || err == io.ErrUnexpectedEOF {
				return &MalformedResponseError{Reason: "invalid XML in stream"}
			}
			return &TransportError{Err: err}
		}

		bodyEl, err := extractBody(frag)
		if err != nil {
			return err
		}

		if !onFragment(bodyEl) {
			return nil
		}
	}
}

// framer splits a byte stream into complete top-level XML elements. Exchange
// flushes one envelope per notification burst, but write boundaries are not
// trusted: a fragment is complete only when the tokenizer sees the element
// depth return to zero, so envelopes split or coalesced across reads are
// still framed correctly.
type framer struct {
	buf  bytes.Buffer // raw bytes as handed to the decoder
	dec  *xml.Decoder
	base int64 // stream offset of buf's first byte
}

func newFramer(r io.Reader) *framer {
	f := &framer{}
	f.dec = xml.NewDecoder(io.TeeReader(r, &f.buf))

	return f
}

// next returns the raw bytes of the next complete top-level element. io.EOF
// means the stream ended cleanly between fragments.
func (f *framer) next() ([]byte, error) {
	depth := 0
	start := int64(-1)

	for {
		offset := f.dec.InputOffset()

		tok, err := f.dec.RawToken()
		if err != nil {
			// RawToken does not enforce tag matching, so a stream cut off
			// mid-element still ends in a bare io.EOF.
			if err == io.EOF && depth != 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				start = offset
			}
			depth++

		case xml.EndElement:
			depth--
			if depth == 0 {
				return f.take(start, f.dec.InputOffset()), nil
			}
		}
	}
}

// take copies out the stream bytes in [start, end) and discards everything
// before end, keeping the buffer bounded on long-lived connections.
func (f *framer) take(start, end int64) []byte {
	data := f.buf.Bytes()
	frag := append([]byte(nil), data[start-f.base:end-f.base]...)

	f.buf.Next(int(end - f.base))
	f.base = end

	return frag
}
