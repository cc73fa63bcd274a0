package ews

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envelopeHead = `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
               xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages"
               xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
  <soap:Body>`

const envelopeTail = `</soap:Body>
</soap:Envelope>`

// successResponse wraps op-specific content in a Success response message for
// the named operation.
func successResponse(op, inner string) string {
	return envelopeHead +
		`<m:` + op + `Response>
  <m:ResponseMessages>
    <m:` + op + `ResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>` + inner + `
    </m:` + op + `ResponseMessage>
  </m:ResponseMessages>
</m:` + op + `Response>` + envelopeTail
}

func errorResponse(op, code string) string {
	return envelopeHead +
		`<m:` + op + `Response>
  <m:ResponseMessages>
    <m:` + op + `ResponseMessage ResponseClass="Error">
      <m:ResponseCode>` + code + `</m:ResponseCode>
    </m:` + op + `ResponseMessage>
  </m:ResponseMessages>
</m:` + op + `Response>` + envelopeTail
}

// newTestClient starts a server that answers every request with response and
// records request bodies in requests.
func newTestClient(t *testing.T, response string, requests *[]string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if requests != nil {
			*requests = append(*requests, string(raw))
		}
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "user@example.com", "secret", Options{})
}

func TestOperationError(t *testing.T) {
	c := newTestClient(t, errorResponse("FindFolder", "ErrorAccessDenied"), nil)

	_, err := c.FindFolders(context.Background())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "FindFolder", opErr.Op)
	assert.Equal(t, "Error", opErr.ResponseClass)
	assert.Equal(t, "ErrorAccessDenied", opErr.ResponseCode)
}

func TestRequestCarriesServerVersion(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("FindFolder", `<m:RootFolder><t:Folders /></m:RootFolder>`), &requests)

	_, err := c.FindFolders(context.Background())
	require.NoError(t, err)

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<t:RequestServerVersion Version="Exchange2010" />`)
}
