package ews

import "context"

// Service is the mailbox surface the CLI layer consumes. *Client is the only
// production implementation; tests substitute fakes.
type Service interface {
	FindFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, folders []Folder, parent FolderID, name string) (FolderID, error)
	FindItems(ctx context.Context, folder FolderID) ([]Item, error)
	GetItem(ctx context.Context, id ItemID) (*Item, error)
	MoveItem(ctx context.Context, id ItemID, to FolderID) (ItemID, error)
	GetAttachments(ctx context.Context, id ItemID) ([]Attachment, error)
	ReadAttachment(ctx context.Context, attachmentID string) ([]byte, error)
	Send(ctx context.Context, msg Message) error
	Reply(ctx context.Context, id ItemID, body string, replyAll bool) error
	Subscribe(ctx context.Context, folder FolderID, kinds ...EventKind) (*Subscription, error)
}

var _ Service = (*Client)(nil)
