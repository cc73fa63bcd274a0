package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/exch-cli/exch/internal/autodiscover"
	"github.com/exch-cli/exch/internal/config"
	"github.com/exch-cli/exch/internal/output"
	"github.com/exch-cli/exch/internal/secrets"
)

// AutodiscoverEndpointCmd resolves the EWS endpoint for a domain
type AutodiscoverEndpointCmd struct {
	Domain string `arg:"" optional:"" help:"Mail domain (defaults to config, then the local hostname's domain)"`
	Save   bool   `help:"Save the resolved endpoint to config" short:"s"`
}

// Run executes the endpoint resolution command
func (cmd *AutodiscoverEndpointCmd) Run(cfg *config.Config, globals *Globals) error {
	domain := cmd.Domain
	if domain == "" {
		domain = cfg.Domain
	}

	resolver, err := newResolver(cfg, globals)
	if err != nil {
		return err
	}

	url, err := resolver.ResolveEndpoint(context.Background(), domain)
	if err != nil {
		return autodiscoverError(err)
	}

	fmt.Println(url)

	if cmd.Save {
		cfg.EwsURL = url
		if err := cfg.Save(); err != nil {
			return &output.CLIError{
				Message:  fmt.Sprintf("Failed to save config: %v", err),
				ExitCode: output.ExitGeneral,
			}
		}
		fmt.Fprintf(os.Stderr, "Saved to config as ews_url\n")
	}

	return nil
}

// AutodiscoverSettingsCmd queries raw autodiscover settings
type AutodiscoverSettingsCmd struct {
	Settings []string `arg:"" help:"Setting names to query (e.g., ExternalEwsUrl)"`
	Domain   string   `help:"Query domain settings for this domain" short:"d"`
	User     string   `help:"Query user settings for this mailbox" short:"u"`
}

// Run executes the settings query command
func (cmd *AutodiscoverSettingsCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals) error {
	if (cmd.Domain == "") == (cmd.User == "") {
		return output.NewCLIError(output.ExitUsage, "Pass exactly one of --domain or --user")
	}

	resolver, err := newResolver(cfg, globals)
	if err != nil {
		return err
	}

	settings := make(map[string]string, len(cmd.Settings))
	for _, name := range cmd.Settings {
		settings[name] = ""
	}

	ctx := context.Background()
	if cmd.Domain != "" {
		err = resolver.GetDomainSettings(ctx, resolver.ServiceURL(cmd.Domain), cmd.Domain, settings)
	} else {
		domain := cmd.User[strings.IndexByte(cmd.User, '@')+1:]
		err = resolver.GetUserSettings(ctx, resolver.ServiceURL(domain), cmd.User, settings)
	}
	if err != nil {
		return autodiscoverError(err)
	}

	type settingRow struct {
		Name  string
		Value string
	}

	rows := make([]settingRow, 0, len(cmd.Settings))
	for _, name := range cmd.Settings {
		rows = append(rows, settingRow{Name: name, Value: settings[name]})
	}

	return fp.Formatter.PrintList(rows, []output.Column{
		{Name: "Setting", Key: "Name"},
		{Name: "Value", Key: "Value"},
	})
}

// newResolver builds an autodiscover resolver with stored credentials when
// available. Anonymous domain queries work without them.
func newResolver(cfg *config.Config, globals *Globals) (*autodiscover.Resolver, error) {
	resolver := &autodiscover.Resolver{
		HTTP: insecureHTTPClient(cfg),
		URL:  cfg.AutodiscoverURL,
	}

	username := cfg.Username
	if username == "" {
		username = cfg.Mailbox
	}
	if username == "" {
		return resolver, nil
	}
	resolver.Username = username

	if pw := os.Getenv("EXCH_PASSWORD"); pw != "" {
		resolver.Password = pw
		return resolver, nil
	}

	if store, err := secrets.NewStore(); err == nil {
		if pw, err := store.Get("password_" + username); err == nil {
			resolver.Password = pw
			return resolver, nil
		}
	}

	// No stored password; prompt unless prompts are disabled.
	if globals.NoInput {
		return resolver, nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s (enter to skip): ", username)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err == nil {
		resolver.Password = strings.TrimSpace(string(raw))
	}

	return resolver, nil
}

func autodiscoverError(err error) error {
	return &output.CLIError{
		Message:  fmt.Sprintf("Autodiscover failed: %v", err),
		ExitCode: output.ExitNetworkError,
		Hint:     "Check the domain, or set autodiscover_url to the service URL directly",
	}
}
