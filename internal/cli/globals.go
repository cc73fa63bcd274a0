package cli

import (
	"os"

	"golang.org/x/term"
)

// Globals holds global flags available to all commands
type Globals struct {
	URL         string `help:"EWS endpoint URL (skips autodiscover)" env:"EXCH_URL"`
	Mailbox     string `help:"Mailbox to operate on" short:"m" env:"EXCH_MAILBOX"`
	Insecure    bool   `help:"Skip TLS certificate verification" env:"EXCH_INSECURE"`
	Output      string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"EXCH_OUTPUT"`
	Verbose     bool   `help:"Verbose output" short:"v" env:"EXCH_VERBOSE"`
	ResultsOnly bool   `help:"Strip JSON envelope, return data array only" env:"EXCH_RESULTS_ONLY"`
	NoInput     bool   `help:"Disable interactive prompts (fail instead)" env:"EXCH_NO_INPUT"`
	Force       bool   `help:"Skip confirmation prompts for destructive operations" env:"EXCH_FORCE"`
	DryRun      bool   `help:"Preview operation without executing" name:"dry-run" env:"EXCH_DRY_RUN"`
}

// ResolvedOutput returns the effective output mode
// "auto" detects TTY: if stdout is TTY -> rich, else -> plain
func (g *Globals) ResolvedOutput() string {
	if g.Output != "auto" {
		return g.Output
	}

	// Detect if stdout is a TTY
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}
