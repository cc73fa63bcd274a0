package soap

import (
	"context"
	"io"
	"net/http"

	"github.com/beevik/etree"
)

// Transport performs SOAP exchanges against one endpoint. A Transport is
// cheap and intended for a single call; the underlying *http.Client is shared
// and owned by the caller (see ews.Client for how the process-wide client is
// assembled).
type Transport struct {
	Client   *http.Client
	Username string
	Password string
}

// Call performs one SOAP request and returns the parsed <soap:Body> element
// of the response. The SOAPAction header is sent only when action is
// non-empty.
func (t *Transport) Call(ctx context.Context, url, action, header, body string) (*etree.Element, error) {
	resp, err := t.post(ctx, url, action, header, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return extractBody(raw)
}

func (t *Transport) post(ctx context.Context, url, action, header, body string) (*http.Response, error) {
	pl := newPayload(Envelope(header, body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pl)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req.ContentLength = int64(pl.Len())

	// Replay hook for authentication renegotiation: the client rewinds the
	// payload and reads it again.
	req.GetBody = func() (io.ReadCloser, error) {
		if _, err := pl.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(pl), nil
	}

	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")
	if action != "" {
		req.Header.Set("SOAPAction", action)
	}
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}

	resp, err := t.client().Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	return resp, nil
}

func (t *Transport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}

	return http.DefaultClient
}

// extractBody parses a complete SOAP envelope and returns its <soap:Body>
// element.
func extractBody(raw []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid XML"}
	}

	root := doc.Root()
	if root == nil {
		return nil, &MalformedResponseError{Reason: "root element not found"}
	}

	if root.NamespaceURI() != NsSOAP || root.Tag != "Envelope" {
		return nil, &MalformedResponseError{Reason: "root element was not soap:Envelope"}
	}

	for _, c := range root.ChildElements() {
		if c.NamespaceURI() == NsSOAP && c.Tag == "Body" {
			return c, nil
		}
	}

	return nil, &MalformedResponseError{Reason: "soap:Body not found in response"}
}
