package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
               xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
  <soap:Header />
  <soap:Body>
    <m:GetFolderResponse />
  </soap:Body>
</soap:Envelope>`

func TestTransportCall(t *testing.T) {
	var gotAction, gotContentType, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		gotContentType = r.Header.Get("Content-Type")
		gotUser, gotPass, _ = r.BasicAuth()

		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)

		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	tr := &Transport{Username: "user@example.com", Password: "hunter2"}

	body, err := tr.Call(context.Background(), srv.URL, "urn:action", "<t:Version />", "<m:GetFolder />")
	require.NoError(t, err)

	assert.Equal(t, "urn:action", gotAction)
	assert.Equal(t, "text/xml;charset=UTF-8", gotContentType)
	assert.Equal(t, "user@example.com", gotUser)
	assert.Equal(t, "hunter2", gotPass)
	assert.Contains(t, gotBody, "<m:GetFolder />")

	require.Len(t, body.ChildElements(), 1)
	assert.Equal(t, "GetFolderResponse", body.ChildElements()[0].Tag)
}

func TestTransportCallNoAction(t *testing.T) {
	var hadAction bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAction = r.Header["Soapaction"]
		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	tr := &Transport{}

	_, err := tr.Call(context.Background(), srv.URL, "", "", "<m:GetFolder />")
	require.NoError(t, err)
	assert.False(t, hadAction, "SOAPAction must be omitted when empty")
}

func TestTransportCallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := &Transport{}

	_, err := tr.Call(context.Background(), srv.URL, "", "", "<m:GetFolder />")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestTransportCallConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	tr := &Transport{}

	_, err := tr.Call(context.Background(), srv.URL, "", "", "<m:GetFolder />")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Error(t, errors.Unwrap(err))
}

func TestTransportCallMalformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"invalid XML", "this is not xml <"},
		{"wrong root", "<NotAnEnvelope />"},
		{"missing body", `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Header /></soap:Envelope>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.response)
			}))
			defer srv.Close()

			tr := &Transport{}

			_, err := tr.Call(context.Background(), srv.URL, "", "", "<m:GetFolder />")

			var malformed *MalformedResponseError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}
