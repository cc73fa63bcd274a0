package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/exch-cli/exch/internal/ews"
	"github.com/exch-cli/exch/internal/output"
)

// SendComposeCmd composes and sends a new message
type SendComposeCmd struct {
	To       []string `help:"Recipient email address (repeatable)" required:""`
	Cc       []string `help:"CC recipient(s)" short:"c"`
	Bcc      []string `help:"BCC recipient(s)" short:"b"`
	Subject  string   `help:"Message subject" required:""`
	Body     string   `help:"Message body content" required:""`
	HTML     bool     `help:"Send as HTML (default: plain text)" name:"html"`
	Priority bool     `help:"Mark as high importance" short:"p"`
}

// Run executes the compose command
func (cmd *SendComposeCmd) Run(sp *ServiceProvider, globals *Globals) error {
	// Dry-run preview
	if globals.DryRun {
		fmt.Fprintf(os.Stderr, "[DRY RUN] Would send message:\n")
		fmt.Fprintf(os.Stderr, "  To: %s\n", cmd.To)
		if len(cmd.Cc) > 0 {
			fmt.Fprintf(os.Stderr, "  Cc: %s\n", cmd.Cc)
		}
		if len(cmd.Bcc) > 0 {
			fmt.Fprintf(os.Stderr, "  Bcc: %s\n", cmd.Bcc)
		}
		fmt.Fprintf(os.Stderr, "  Subject: %s\n", cmd.Subject)
		if cmd.Priority {
			fmt.Fprintf(os.Stderr, "  Importance: High\n")
		}
		return nil
	}

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	msg := ews.Message{
		Subject: cmd.Subject,
		Body:    cmd.Body,
		HTML:    cmd.HTML,
		To:      cmd.To,
		Cc:      cmd.Cc,
		Bcc:     cmd.Bcc,
	}
	if cmd.Priority {
		msg.Importance = ews.ImportanceHigh
	}

	if err := svc.Send(context.Background(), msg); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to send message: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	// Print confirmation to stderr
	fmt.Fprintf(os.Stderr, "Message sent to %s\n", cmd.To[0])
	return nil
}

// SendReplyCmd replies to a message
type SendReplyCmd struct {
	MessageID string `arg:"" help:"Message ID to reply to"`
	Body      string `help:"Reply body content" required:""`
	ChangeKey string `help:"Change key for the message" name:"change-key"`
	All       bool   `help:"Reply to all recipients" name:"all"`
}

// Run executes the reply command
func (cmd *SendReplyCmd) Run(sp *ServiceProvider, globals *Globals) error {
	// Dry-run preview
	if globals.DryRun {
		fmt.Fprintf(os.Stderr, "[DRY RUN] Would reply to message %s (reply-all=%v)\n", cmd.MessageID, cmd.All)
		return nil
	}

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	id := ews.ItemID{ID: cmd.MessageID, ChangeKey: cmd.ChangeKey}
	if err := svc.Reply(context.Background(), id, cmd.Body, cmd.All); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to send reply: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	fmt.Fprintf(os.Stderr, "Reply sent\n")
	return nil
}
