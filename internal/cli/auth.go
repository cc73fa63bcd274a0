package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/exch-cli/exch/internal/config"
	"github.com/exch-cli/exch/internal/output"
	"github.com/exch-cli/exch/internal/secrets"
)

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	Username string `arg:"" optional:"" help:"Account to store a password for (defaults to configured mailbox)"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(cfg *config.Config, globals *Globals) error {
	username := cmd.Username
	if username == "" {
		username = cfg.Username
	}
	if username == "" {
		username = cfg.Mailbox
	}
	if username == "" {
		return output.NewCLIError(output.ExitConfigError, "No account given").
			WithHint("Run: exch auth login you@example.com")
	}

	if globals.NoInput {
		return output.NewCLIError(output.ExitUsage,
			"auth login needs an interactive terminal").
			WithHint("In scripts, pass the password via EXCH_PASSWORD instead")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to read password: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	password := strings.TrimSpace(string(raw))
	if password == "" {
		return output.NewCLIError(output.ExitUsage, "Empty password")
	}

	store, err := secrets.NewStore()
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	if err := store.Set(passwordKey(username), password); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to store password: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	// Remember the account for future commands
	if cfg.Mailbox == "" {
		cfg.Mailbox = username
		if err := cfg.Save(); err != nil {
			// Non-fatal - log warning
			fmt.Fprintf(os.Stderr, "Warning: failed to save mailbox to config: %v\n", err)
		}
	}

	storageType := "keyring"
	if secrets.IsWSL() || secrets.IsHeadless() {
		storageType = "encrypted file"
	}
	fmt.Fprintf(os.Stderr, "Password for %s stored in %s\n", username, storageType)

	return nil
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct {
	Username string `arg:"" optional:"" help:"Account to remove (defaults to configured mailbox)"`
	All      bool   `help:"Remove all stored accounts" short:"a"`
}

// Run executes the logout command
func (cmd *AuthLogoutCmd) Run(cfg *config.Config) error {
	store, err := secrets.NewStore()
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	if cmd.All {
		keys, err := store.List()
		if err != nil {
			return &output.CLIError{
				Message:  fmt.Sprintf("Failed to list stored credentials: %v", err),
				ExitCode: output.ExitGeneral,
			}
		}

		removed := 0
		for _, key := range keys {
			if strings.HasPrefix(key, "password_") {
				store.Delete(key) // Ignore errors for missing keys
				removed++
			}
		}

		fmt.Fprintf(os.Stderr, "Removed %d stored account(s)\n", removed)
		return nil
	}

	username := cmd.Username
	if username == "" {
		username = cfg.Username
	}
	if username == "" {
		username = cfg.Mailbox
	}
	if username == "" {
		return output.NewCLIError(output.ExitUsage, "No account given").
			WithHint("Run: exch auth logout you@example.com")
	}

	if err := store.Delete(passwordKey(username)); err != nil {
		if err == secrets.ErrNotFound {
			return output.NewCLIError(output.ExitNotFound,
				fmt.Sprintf("No stored password for %s", username))
		}
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to remove password: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(os.Stderr, "Credentials removed for %s\n", username)
	return nil
}

// AuthListCmd implements the auth list command
type AuthListCmd struct{}

// Run executes the list command
func (cmd *AuthListCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	store, err := secrets.NewStore()
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	keys, err := store.List()
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to list stored credentials: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	type accountInfo struct {
		Account string
		Active  string
	}

	var accounts []accountInfo
	for _, key := range keys {
		if !strings.HasPrefix(key, "password_") {
			continue
		}

		account := strings.TrimPrefix(key, "password_")
		accounts = append(accounts, accountInfo{
			Account: account,
			Active:  formatBool(account == cfg.Mailbox || account == cfg.Username),
		})
	}

	if len(accounts) == 0 {
		fmt.Fprintf(os.Stderr, "No stored accounts found\n")
		fmt.Fprintf(os.Stderr, "Run 'exch auth login' to store a password\n")
		return nil
	}

	return fp.Formatter.PrintList(accounts, []output.Column{
		{Name: "Account", Key: "Account"},
		{Name: "Active", Key: "Active"},
	})
}
