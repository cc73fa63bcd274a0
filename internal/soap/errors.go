package soap

import "fmt"

// TransportError reports a connection-level failure: DNS, TLS, refused or
// reset connections, or a truncated response body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError reports a response with status >= 400.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.Status)
}

// MalformedResponseError reports a response that is not a well-formed SOAP
// envelope: invalid XML, a root other than soap:Envelope, or a missing
// soap:Body.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed SOAP response: " + e.Reason
}
