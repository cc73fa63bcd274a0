package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/exch-cli/exch/internal/autodiscover"
	"github.com/exch-cli/exch/internal/config"
	"github.com/exch-cli/exch/internal/ews"
	"github.com/exch-cli/exch/internal/output"
	"github.com/exch-cli/exch/internal/secrets"
)

// ServiceProvider lazily creates and caches the EWS client.
type ServiceProvider struct {
	cfg *config.Config

	mailOnce sync.Once
	mail     ews.Service
	mailErr  error

	foldersOnce sync.Once
	folders     []ews.Folder
	foldersErr  error
}

// NewServiceProvider creates a ServiceProvider with the given config.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{cfg: cfg}
}

// Mail returns the EWS service, creating it on first call. The endpoint comes
// from config or autodiscover; the password from EXCH_PASSWORD or the
// credential store.
func (sp *ServiceProvider) Mail() (ews.Service, error) {
	sp.mailOnce.Do(func() {
		username := sp.username()
		if username == "" {
			sp.mailErr = output.NewCLIError(output.ExitConfigError, "No account configured").
				WithHint("Run: exch config set mailbox you@example.com")
			return
		}

		password, err := sp.password(username)
		if err != nil {
			sp.mailErr = err
			return
		}

		endpoint, err := sp.endpoint(username, password)
		if err != nil {
			sp.mailErr = err
			return
		}

		sp.mail = ews.NewClient(endpoint, username, password, ews.Options{
			InsecureTLS: sp.cfg.InsecureTLS,
			RateLimit:   sp.cfg.RateLimit,
		})
	})
	return sp.mail, sp.mailErr
}

// Folders returns the full folder list, fetching it once per invocation.
// Commands that resolve folder names share this cache.
func (sp *ServiceProvider) Folders(ctx context.Context) ([]ews.Folder, error) {
	svc, err := sp.Mail()
	if err != nil {
		return nil, err
	}

	sp.foldersOnce.Do(func() {
		sp.folders, sp.foldersErr = svc.FindFolders(ctx)
		if sp.foldersErr != nil {
			sp.foldersErr = &output.CLIError{
				Message:  fmt.Sprintf("Failed to list folders: %v", sp.foldersErr),
				ExitCode: output.ExitServerError,
			}
		}
	})
	return sp.folders, sp.foldersErr
}

// FolderByName resolves a display name to a folder. Unknown names are tried
// verbatim as folder IDs so scripts can pass IDs straight through.
func (sp *ServiceProvider) FolderByName(ctx context.Context, name string) (ews.FolderID, error) {
	folders, err := sp.Folders(ctx)
	if err != nil {
		return ews.FolderID{}, err
	}

	for _, f := range folders {
		if f.DisplayName == name {
			return f.ID, nil
		}
	}

	return ews.FolderID{ID: name}, nil
}

func (sp *ServiceProvider) username() string {
	if sp.cfg.Username != "" {
		return sp.cfg.Username
	}
	return sp.cfg.Mailbox
}

func (sp *ServiceProvider) password(username string) (string, error) {
	if pw := os.Getenv("EXCH_PASSWORD"); pw != "" {
		return pw, nil
	}

	store, err := secrets.NewStore()
	if err != nil {
		return "", &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	pw, err := store.Get(passwordKey(username))
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return "", output.NewCLIError(output.ExitAuth,
				fmt.Sprintf("No stored password for %s", username)).
				WithHint("Run: exch auth login")
		}
		return "", &output.CLIError{
			Message:  fmt.Sprintf("Failed to read stored password: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	return pw, nil
}

func (sp *ServiceProvider) endpoint(username, password string) (string, error) {
	if sp.cfg.EwsURL != "" {
		return sp.cfg.EwsURL, nil
	}

	resolver := &autodiscover.Resolver{
		HTTP:     insecureHTTPClient(sp.cfg),
		Username: username,
		Password: password,
		URL:      sp.cfg.AutodiscoverURL,
	}

	url, err := resolver.ResolveEndpoint(context.Background(), sp.cfg.Domain)
	if err != nil {
		if errors.Is(err, autodiscover.ErrEndpointNotFound) {
			return "", output.NewCLIError(output.ExitConfigError,
				"Autodiscover found no EWS endpoint").
				WithHint("Set one explicitly: exch config set ews_url https://mail.example.com/EWS/Exchange.asmx")
		}
		return "", &output.CLIError{
			Message:  fmt.Sprintf("Autodiscover failed: %v", err),
			ExitCode: output.ExitNetworkError,
			Hint:     "Set the endpoint explicitly: exch config set ews_url <url>",
		}
	}

	return url, nil
}

func passwordKey(username string) string {
	return "password_" + username
}

// insecureHTTPClient honors the insecure_tls setting for requests made
// outside the EWS client, like autodiscover.
func insecureHTTPClient(cfg *config.Config) *http.Client {
	if !cfg.InsecureTLS {
		return nil
	}

	return &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
}
