// Package autodiscover locates a user's EWS endpoint through the Exchange
// SOAP autodiscover service.
package autodiscover

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/beevik/etree"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

const (
	actionBase = "http://schemas.microsoft.com/exchange/2010/Autodiscover/Autodiscover/"

	// SettingEwsURL is the autodiscover setting naming the externally
	// reachable EWS endpoint.
	SettingEwsURL = "ExternalEwsUrl"

	// SettingInternalEwsURL names the intranet-facing endpoint, used as a
	// fallback for mailboxes without an external one.
	SettingInternalEwsURL = "InternalEwsUrl"
)

// Error reports a request the autodiscover service answered with an error
// code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("autodiscover failed: %s (%s)", e.Message, e.Code)
	}
	return "autodiscover failed: " + e.Code
}

// ErrEndpointNotFound means autodiscover answered but named no EWS endpoint
// for the domain or mailbox.
var ErrEndpointNotFound = errors.New("no EWS endpoint found via autodiscover")

// Resolver queries the autodiscover service. The zero value works for
// unauthenticated domain queries against an explicit URL.
type Resolver struct {
	// HTTP is the client used for requests; nil means http.DefaultClient.
	HTTP *http.Client

	// Credentials for the autodiscover service. User settings queries
	// generally require them; domain queries often do not.
	Username string
	Password string

	// URL overrides the per-domain autodiscover URL derivation.
	URL string
}

// GetDomainSettings queries domain-wide settings. settings maps requested
// setting names to values; only keys already present are requested and
// filled. Keys the service does not return keep their prior value.
func (r *Resolver) GetDomainSettings(ctx context.Context, url, domain string, settings map[string]string) error {
	var w xmlutil.Writer

	w.StartElement("a:GetDomainSettingsRequestMessage")
	w.StartElement("a:Request")
	w.StartElement("a:Domains")
	w.ElementText("a:Domain", domain)
	w.EndElement()
	writeRequestedSettings(&w, settings)
	w.ElementText("a:RequestedVersion", "Exchange2010")
	w.EndElement()
	w.EndElement()

	body, err := r.call(ctx, url, "GetDomainSettings", w.Dump())
	if err != nil {
		return err
	}

	return parseSettings(body, "GetDomainSettings", "Domain", settings)
}

// GetUserSettings queries per-mailbox settings, analogous to
// GetDomainSettings.
func (r *Resolver) GetUserSettings(ctx context.Context, url, mailbox string, settings map[string]string) error {
	var w xmlutil.Writer

	w.StartElement("a:GetUserSettingsRequestMessage")
	w.StartElement("a:Request")
	w.StartElement("a:Users")
	w.StartElement("a:User")
	w.ElementText("a:Mailbox", mailbox)
	w.EndElement()
	w.EndElement()
	writeRequestedSettings(&w, settings)
	w.ElementText("a:RequestedVersion", "Exchange2010")
	w.EndElement()
	w.EndElement()

	body, err := r.call(ctx, url, "GetUserSettings", w.Dump())
	if err != nil {
		return err
	}

	return parseSettings(body, "GetUserSettings", "User", settings)
}

// ResolveEndpoint derives the EWS endpoint URL for a domain. An empty domain
// falls back to the domain part of the local hostname.
func (r *Resolver) ResolveEndpoint(ctx context.Context, domain string) (string, error) {
	if domain == "" {
		var err error
		if domain, err = localDomain(); err != nil {
			return "", err
		}
	}

	settings := map[string]string{SettingEwsURL: ""}
	if err := r.GetDomainSettings(ctx, r.ServiceURL(domain), domain, settings); err != nil {
		return "", err
	}

	if settings[SettingEwsURL] == "" {
		return "", ErrEndpointNotFound
	}

	return settings[SettingEwsURL], nil
}

// ResolveMailboxEndpoint derives the EWS endpoint URL for one mailbox,
// querying user settings under the mailbox's domain.
func (r *Resolver) ResolveMailboxEndpoint(ctx context.Context, mailbox string) (string, error) {
	domain := mailboxDomain(mailbox)
	if domain == "" {
		return "", fmt.Errorf("mailbox %q has no domain part", mailbox)
	}

	settings := map[string]string{SettingEwsURL: "", SettingInternalEwsURL: ""}
	if err := r.GetUserSettings(ctx, r.ServiceURL(domain), mailbox, settings); err != nil {
		return "", err
	}

	if url := settings[SettingEwsURL]; url != "" {
		return url, nil
	}
	if url := settings[SettingInternalEwsURL]; url != "" {
		return url, nil
	}

	return "", ErrEndpointNotFound
}

// ServiceURL returns the autodiscover service URL for a domain, honoring the
// URL override.
func (r *Resolver) ServiceURL(domain string) string {
	if r.URL != "" {
		return r.URL
	}

	return "https://autodiscover." + domain + "/autodiscover/autodiscover.svc"
}

func (r *Resolver) call(ctx context.Context, url, op, body string) (*etree.Element, error) {
	var h xmlutil.Writer

	h.ElementText("a:RequestedServerVersion", "Exchange2010")
	h.ElementText("wsa:Action", actionBase+op)
	h.ElementText("wsa:To", url)

	tr := &soap.Transport{Client: r.HTTP, Username: r.Username, Password: r.Password}

	return tr.Call(ctx, url, `"`+actionBase+op+`"`, h.Dump(), body)
}

func writeRequestedSettings(w *xmlutil.Writer, settings map[string]string) {
	w.StartElement("a:RequestedSettings")
	for name := range settings {
		w.ElementText("a:Setting", name)
	}
	w.EndElement()
}

// parseSettings walks an autodiscover response and copies returned setting
// values into settings. scope is "Domain" or "User", matching the response
// element names.
func parseSettings(body *etree.Element, op, scope string, settings map[string]string) error {
	respMsg, err := xmlutil.FindChild(body, soap.NsAutodiscover, op+"ResponseMessage")
	if err != nil {
		return err
	}

	resp, err := xmlutil.FindChild(respMsg, soap.NsAutodiscover, "Response")
	if err != nil {
		return err
	}

	if err := checkErrorCode(resp); err != nil {
		return err
	}

	responses, err := xmlutil.FindChild(resp, soap.NsAutodiscover, scope+"Responses")
	if err != nil {
		return err
	}

	scoped, err := xmlutil.FindChild(responses, soap.NsAutodiscover, scope+"Response")
	if err != nil {
		return err
	}

	if err := checkErrorCode(scoped); err != nil {
		return err
	}

	settingsEl, err := xmlutil.FindChild(scoped, soap.NsAutodiscover, scope+"Settings")
	if err != nil {
		return err
	}

	xmlutil.EachChild(settingsEl, soap.NsAutodiscover, scope+"Setting", func(s *etree.Element) bool {
		name := xmlutil.ChildText(s, soap.NsAutodiscover, "Name")
		if _, wanted := settings[name]; wanted {
			settings[name] = xmlutil.ChildText(s, soap.NsAutodiscover, "Value")
		}
		return true
	})

	return nil
}

func checkErrorCode(el *etree.Element) error {
	code := xmlutil.ChildText(el, soap.NsAutodiscover, "ErrorCode")
	if code == "" || code == "NoError" {
		return nil
	}

	return &Error{
		Code:    code,
		Message: xmlutil.ChildText(el, soap.NsAutodiscover, "ErrorMessage"),
	}
}
