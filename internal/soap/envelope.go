// Package soap wraps Exchange request fragments in SOAP 1.1 envelopes and
// drives the HTTP exchange, in both one-shot and streaming form.
package soap

import (
	"strings"

	"github.com/exch-cli/exch/internal/xmlutil"
)

// Namespace URIs used across Exchange SOAP payloads.
const (
	NsSOAP         = "http://schemas.xmlsoap.org/soap/envelope/"
	NsAutodiscover = "http://schemas.microsoft.com/exchange/2010/Autodiscover"
	NsAddressing   = "http://www.w3.org/2005/08/addressing"
	NsMessages     = "http://schemas.microsoft.com/exchange/services/2006/messages"
	NsTypes        = "http://schemas.microsoft.com/exchange/services/2006/types"
)

var envelopeNamespaces = map[string]string{
	"soap": NsSOAP,
	"a":    NsAutodiscover,
	"wsa":  NsAddressing,
	"m":    NsMessages,
	"t":    NsTypes,
}

// Envelope wraps a header and body fragment in a SOAP envelope. Both
// fragments are spliced in verbatim; a leading XML declaration on the body is
// stripped first, since the envelope already carries one.
func Envelope(header, body string) string {
	var w xmlutil.Writer

	w.StartDocument()
	w.StartElementNS("soap:Envelope", envelopeNamespaces)

	w.StartElement("soap:Header")
	w.Raw(header)
	w.EndElement()

	w.StartElement("soap:Body")
	w.Raw(stripDeclaration(body))
	w.EndElement()

	w.EndElement()

	return w.Dump()
}

func stripDeclaration(s string) string {
	if len(s) > 2 && s[0] == '<' && s[1] == '?' {
		if i := strings.IndexByte(s, '>'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimLeft(s, "\n")
	}

	return s
}
