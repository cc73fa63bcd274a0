package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/exch-cli/exch/internal/ews"
	"github.com/exch-cli/exch/internal/output"
)

// AttachmentListRow is a display struct for attachment list output
type AttachmentListRow struct {
	Name         string
	Size         string
	Modified     string
	AttachmentID string
}

// AttachmentsListCmd lists attachments on a message
type AttachmentsListCmd struct {
	MessageID string `arg:"" help:"Message ID"`
	ChangeKey string `help:"Change key for the message" name:"change-key"`
}

// Run executes the list attachments command
func (cmd *AttachmentsListCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	attachments, err := svc.GetAttachments(context.Background(),
		ews.ItemID{ID: cmd.MessageID, ChangeKey: cmd.ChangeKey})
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to fetch attachments: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	rows := make([]AttachmentListRow, len(attachments))
	for i, att := range attachments {
		rows[i] = AttachmentListRow{
			Name:         att.Name,
			Size:         formatBytes(int64(att.Size)),
			Modified:     att.Modified.Format("2006-01-02 15:04"),
			AttachmentID: att.ID,
		}
	}

	columns := []output.Column{
		{Name: "Name", Key: "Name"},
		{Name: "Size", Key: "Size"},
		{Name: "Modified", Key: "Modified"},
		{Name: "ID", Key: "AttachmentID", Width: 24},
	}

	return fp.Formatter.PrintList(rows, columns)
}

// AttachmentsDownloadCmd downloads an attachment
type AttachmentsDownloadCmd struct {
	AttachmentID string `arg:"" help:"Attachment ID to download"`
	MessageID    string `help:"Message ID carrying the attachment (used to derive the file name)"`
	OutputPath   string `help:"Output file path (default: attachment name)" name:"output-path" predictor:"file"`
}

// Run executes the download attachment command
func (cmd *AttachmentsDownloadCmd) Run(sp *ServiceProvider, globals *Globals) error {
	ctx := context.Background()

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	// Determine output path
	destPath := cmd.OutputPath
	if destPath == "" {
		if cmd.MessageID == "" {
			return output.NewCLIError(output.ExitUsage,
				"Either --output-path or --message-id is required").
				WithHint("The message ID is used to look up the attachment's file name")
		}

		attachments, err := svc.GetAttachments(ctx, ews.ItemID{ID: cmd.MessageID})
		if err != nil {
			return &output.CLIError{
				Message:  fmt.Sprintf("Failed to fetch attachment metadata: %v", err),
				ExitCode: output.ExitServerError,
			}
		}

		for _, att := range attachments {
			if att.ID == cmd.AttachmentID {
				destPath = att.Name
				break
			}
		}

		if destPath == "" {
			return &output.CLIError{
				Message:  fmt.Sprintf("Attachment not found: %s", cmd.AttachmentID),
				ExitCode: output.ExitNotFound,
			}
		}
	}

	if !globals.Force {
		if _, err := os.Stat(destPath); err == nil {
			return output.NewCLIError(output.ExitConflict,
				fmt.Sprintf("File already exists: %s", destPath)).
				WithHint("Pass --force to overwrite")
		}
	}

	data, err := svc.ReadAttachment(ctx, cmd.AttachmentID)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to download attachment: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to write %s: %v", destPath, err),
			ExitCode: output.ExitGeneral,
		}
	}

	// Print confirmation to stderr
	fmt.Fprintf(os.Stderr, "Downloaded: %s (%s)\n", destPath, formatBytes(int64(len(data))))
	return nil
}
