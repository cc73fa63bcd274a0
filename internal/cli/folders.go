package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/exch-cli/exch/internal/output"
)

// FolderListRow is a display struct for folder list output
type FolderListRow struct {
	Name     string
	Total    uint
	Unread   uint
	Children uint
	FolderID string
}

// FoldersListCmd lists every folder in the mailbox
type FoldersListCmd struct{}

// Run executes the list folders command
func (cmd *FoldersListCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	folders, err := sp.Folders(context.Background())
	if err != nil {
		return err
	}

	rows := make([]FolderListRow, len(folders))
	for i, f := range folders {
		rows[i] = FolderListRow{
			Name:     f.DisplayName,
			Total:    f.TotalCount,
			Unread:   f.UnreadCount,
			Children: f.ChildFolderCount,
			FolderID: f.ID.ID,
		}
	}

	columns := []output.Column{
		{Name: "Name", Key: "Name"},
		{Name: "Total", Key: "Total"},
		{Name: "Unread", Key: "Unread"},
		{Name: "Subfolders", Key: "Children"},
		{Name: "ID", Key: "FolderID", Width: 24},
	}

	return fp.Formatter.PrintList(rows, columns)
}

// FoldersCreateCmd creates a folder under a parent
type FoldersCreateCmd struct {
	Name   string `arg:"" help:"Display name for the new folder"`
	Parent string `help:"Parent folder name or ID" default:"Inbox" short:"p"`
}

// Run executes the create folder command
func (cmd *FoldersCreateCmd) Run(sp *ServiceProvider, globals *Globals) error {
	ctx := context.Background()

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	folders, err := sp.Folders(ctx)
	if err != nil {
		return err
	}

	parent, err := sp.FolderByName(ctx, cmd.Parent)
	if err != nil {
		return err
	}

	// Dry-run preview
	if globals.DryRun {
		fmt.Fprintf(os.Stderr, "[DRY RUN] Would create folder %q under %s\n", cmd.Name, cmd.Parent)
		return nil
	}

	id, err := svc.CreateFolder(ctx, folders, parent, cmd.Name)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to create folder: %v", err),
			ExitCode: output.ExitServerError,
		}
	}

	fmt.Fprintf(os.Stderr, "Folder %q ready (%s)\n", cmd.Name, id.ID)
	return nil
}
