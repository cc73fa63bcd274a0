package ews

import (
	"context"
	"crypto/tls"
	"net/http"
	"strconv"
	"time"

	"github.com/Azure/go-ntlmssp"
	"github.com/beevik/etree"
	"golang.org/x/time/rate"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5 // requests per second
)

// Options tunes client behavior beyond the endpoint and credentials.
type Options struct {
	// InsecureTLS disables server certificate verification. Intended for
	// lab Exchange servers with self-signed certificates.
	InsecureTLS bool

	// RateLimit caps outgoing requests per second. Zero means the default
	// of 5; streaming connections are not counted.
	RateLimit float64

	// Timeout bounds one-shot requests end to end. Zero means 30 seconds.
	// Streaming connections are exempt and bounded by their context.
	Timeout time.Duration
}

// Client talks to one EWS endpoint as one user. It is safe for concurrent
// use.
type Client struct {
	endpoint string
	username string
	password string

	http    *http.Client // one-shot calls, request timeout applied
	stream  *http.Client // streaming calls, no timeout
	limiter *rate.Limiter
}

// NewClient returns a client for the given EWS endpoint URL. Credentials are
// offered via HTTP Negotiate with a basic-auth fallback, which covers both
// NTLM-only on-premise servers and basic-auth test setups.
func NewClient(endpoint, username, password string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = defaultRateLimit
	}

	rt := ntlmssp.Negotiator{
		RoundTripper: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureTLS},
		},
	}

	return &Client{
		endpoint: endpoint,
		username: username,
		password: password,
		http:     &http.Client{Transport: rt, Timeout: opts.Timeout},
		stream:   &http.Client{Transport: rt},
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Endpoint returns the EWS endpoint URL the client was built with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// call performs one EWS request and returns the parsed soap:Body.
func (c *Client) call(ctx context.Context, body string) (*etree.Element, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &soap.TransportError{Err: err}
	}

	tr := &soap.Transport{Client: c.http, Username: c.username, Password: c.password}

	return tr.Call(ctx, c.endpoint, "", requestHeader(), body)
}

// requestHeader is the SOAP header shared by every EWS operation.
func requestHeader() string {
	var w xmlutil.Writer

	w.StartElement("t:RequestServerVersion")
	w.Attribute("Version", "Exchange2010")
	w.EndElement()

	return w.Dump()
}

// responseMessage locates the single response message for op inside a
// soap:Body and checks its response class. A non-Success class becomes an
// OperationError carrying the m:ResponseCode.
func responseMessage(body *etree.Element, op string) (*etree.Element, error) {
	resp, err := xmlutil.FindChild(body, soap.NsMessages, op+"Response")
	if err != nil {
		return nil, err
	}

	msgs, err := xmlutil.FindChild(resp, soap.NsMessages, "ResponseMessages")
	if err != nil {
		return nil, err
	}

	msg, err := xmlutil.FindChild(msgs, soap.NsMessages, op+"ResponseMessage")
	if err != nil {
		return nil, err
	}

	if class := xmlutil.Attr(msg, "ResponseClass"); class != "Success" {
		return nil, &OperationError{
			Op:            op,
			ResponseClass: class,
			ResponseCode:  xmlutil.ChildText(msg, soap.NsMessages, "ResponseCode"),
		}
	}

	return msg, nil
}

func parseUint(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
