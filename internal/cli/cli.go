package cli

import (
	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/exch-cli/exch/internal/config"
	"github.com/exch-cli/exch/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Auth         AuthCmd         `cmd:"" help:"Credential management"`
	Config       ConfigCmd       `cmd:"" help:"Configuration commands"`
	Autodiscover AutodiscoverCmd `cmd:"" help:"Locate Exchange endpoints via autodiscover"`
	Folders      FoldersCmd      `cmd:"" help:"Manage mailbox folders"`
	Messages     MessagesCmd     `cmd:"" help:"Manage messages"`
	Attachments  AttachmentsCmd  `cmd:"" help:"List and download attachments"`
	Send         SendCmd         `cmd:"" help:"Send mail"`
	Watch        WatchCmd        `cmd:"" help:"Stream mailbox notifications"`
	Schema       SchemaCmd       `cmd:"" help:"Output machine-readable command tree as JSON"`
	Version      VersionCmd      `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// BeforeApply hook runs before any command execution
// It loads config, creates the formatter, and binds dependencies
func (c *CLI) BeforeApply(ctx *kong.Context) error {
	// Load config from XDG path (returns defaults if missing)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// CLI flags win over config file values
	if c.URL != "" {
		cfg.EwsURL = c.URL
	}
	if c.Mailbox != "" {
		cfg.Mailbox = c.Mailbox
	}
	if c.Insecure {
		cfg.InsecureTLS = true
	}
	if c.Output == "auto" && cfg.DefaultOutput != "" {
		c.Output = cfg.DefaultOutput
	}

	// Create output formatter
	var formatter *FormatterProvider
	if c.ResolvedOutput() == "json" && c.ResultsOnly {
		formatter = &FormatterProvider{Formatter: output.NewJSON(true)}
	} else {
		formatter = &FormatterProvider{Formatter: output.New(c.ResolvedOutput())}
	}

	// Bind dependencies to kong context
	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(NewServiceProvider(cfg))

	return nil
}

// AuthCmd holds credential subcommands
type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Store the password for a mailbox account"`
	Logout AuthLogoutCmd `cmd:"" help:"Remove stored credentials"`
	List   AuthListCmd   `cmd:"" help:"List stored accounts"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// AutodiscoverCmd holds autodiscover subcommands
type AutodiscoverCmd struct {
	Endpoint AutodiscoverEndpointCmd `cmd:"" help:"Resolve the EWS endpoint for a domain"`
	Settings AutodiscoverSettingsCmd `cmd:"" help:"Query autodiscover settings"`
}

// FoldersCmd holds folder subcommands
type FoldersCmd struct {
	List   FoldersListCmd   `cmd:"" help:"List all folders in the mailbox"`
	Create FoldersCreateCmd `cmd:"" help:"Create a folder (no-op if it already exists)"`
}

// MessagesCmd holds message subcommands
type MessagesCmd struct {
	List MessagesListCmd `cmd:"" help:"List messages in a folder"`
	Get  MessagesGetCmd  `cmd:"" help:"Get full message details"`
	Move MessagesMoveCmd `cmd:"" help:"Move a message to another folder"`
}

// AttachmentsCmd holds attachment subcommands
type AttachmentsCmd struct {
	List     AttachmentsListCmd     `cmd:"" help:"List attachments on a message"`
	Download AttachmentsDownloadCmd `cmd:"" help:"Download an attachment"`
}

// SendCmd holds send subcommands
type SendCmd struct {
	Compose SendComposeCmd `cmd:"" help:"Compose and send a new message"`
	Reply   SendReplyCmd   `cmd:"" help:"Reply to a message"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	version := ctx.Model.Vars()["version"]
	println("exch version " + version)
	return nil
}
