package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/exch-cli/exch/internal/ews"
	"github.com/exch-cli/exch/internal/output"
)

// MessageListRow is a display struct for message list output with formatted fields
type MessageListRow struct {
	Status     string
	From       string
	Subject    string
	Date       string
	Attachment string
	MessageID  string
}

// MessageDetail is a display struct combining metadata and content
type MessageDetail struct {
	Subject        string
	From           string
	To             string
	Cc             string
	Date           string
	Status         string
	Importance     string
	HasAttachment  string
	ConversationID string
	MessageID      string
	Body           string
}

// MessagesListCmd lists messages in a folder
type MessagesListCmd struct {
	Folder string `help:"Folder name or ID" default:"Inbox" short:"f"`
	Unread bool   `help:"Only unread messages" short:"u"`
	Limit  int    `help:"Maximum messages to show (0 = all)" short:"l" default:"50"`
}

// Run executes the list messages command
func (cmd *MessagesListCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	ctx := context.Background()

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	folderID, err := sp.FolderByName(ctx, cmd.Folder)
	if err != nil {
		return err
	}

	items, err := svc.FindItems(ctx, folderID)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to fetch messages: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	if cmd.Unread {
		filtered := items[:0]
		for _, item := range items {
			if !item.IsRead {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	// Items arrive oldest first; keep the most recent ones.
	if cmd.Limit > 0 && len(items) > cmd.Limit {
		items = items[len(items)-cmd.Limit:]
	}

	rows := make([]MessageListRow, len(items))
	for i, item := range items {
		rows[i] = MessageListRow{
			Status:     formatReadStatus(item.IsRead),
			From:       item.From,
			Subject:    item.Subject,
			Date:       item.Received.Format("2006-01-02 15:04"),
			Attachment: formatAttachmentFlag(item.HasAttachments),
			MessageID:  item.ID.ID,
		}
	}

	columns := []output.Column{
		{Name: "Status", Key: "Status"},
		{Name: "From", Key: "From"},
		{Name: "Subject", Key: "Subject", Width: 50},
		{Name: "Date", Key: "Date"},
		{Name: "Attachment", Key: "Attachment"},
		{Name: "ID", Key: "MessageID", Width: 24},
	}

	return fp.Formatter.PrintList(rows, columns)
}

// MessagesGetCmd gets full details for a specific message
type MessagesGetCmd struct {
	MessageID string `arg:"" help:"Message ID to retrieve"`
	ChangeKey string `help:"Change key for the message" name:"change-key"`
}

// Run executes the get message command
func (cmd *MessagesGetCmd) Run(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	item, err := svc.GetItem(context.Background(), ews.ItemID{ID: cmd.MessageID, ChangeKey: cmd.ChangeKey})
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to fetch message: %v", err),
			ExitCode: output.ExitServerError,
		}
	}
	if item == nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Message not found: %s", cmd.MessageID),
			ExitCode: output.ExitNotFound,
		}
	}

	detail := MessageDetail{
		Subject:        item.Subject,
		From:           item.From,
		To:             strings.Join(item.To, ", "),
		Cc:             strings.Join(item.Cc, ", "),
		Date:           item.Received.Format("2006-01-02 15:04:05 MST"),
		Status:         formatReadStatus(item.IsRead),
		Importance:     string(item.Importance),
		HasAttachment:  formatBool(item.HasAttachments),
		ConversationID: item.ConversationID,
		MessageID:      item.ID.ID,
		Body:           formatBody(item.Body, item.BodyType, globals.ResolvedOutput()),
	}

	return fp.Formatter.Print(detail)
}

// MessagesMoveCmd moves a message to another folder
type MessagesMoveCmd struct {
	MessageID string `arg:"" help:"Message ID to move"`
	To        string `help:"Destination folder name or ID" required:"" short:"t"`
	ChangeKey string `help:"Change key for the message" name:"change-key"`
}

// Run executes the move message command
func (cmd *MessagesMoveCmd) Run(sp *ServiceProvider, globals *Globals) error {
	ctx := context.Background()

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	dest, err := sp.FolderByName(ctx, cmd.To)
	if err != nil {
		return err
	}

	// Dry-run preview
	if globals.DryRun {
		fmt.Fprintf(os.Stderr, "[DRY RUN] Would move message %s to %s\n", cmd.MessageID, cmd.To)
		return nil
	}

	moved, err := svc.MoveItem(ctx, ews.ItemID{ID: cmd.MessageID, ChangeKey: cmd.ChangeKey}, dest)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to move message: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	// The server assigns a fresh ID on move; print it for follow-up commands.
	fmt.Fprintf(os.Stderr, "Moved to %s\n", cmd.To)
	fmt.Println(moved.ID)
	return nil
}
