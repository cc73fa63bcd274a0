// Package ews implements the Exchange Web Services operations the tool
// needs: folder and message queries, attachment retrieval, message
// composition, and streaming notifications.
package ews

import "time"

// ItemID identifies one item in a mailbox. The change key is a revision
// marker and must be current for operations that modify the item.
type ItemID struct {
	ID        string `json:"id"`
	ChangeKey string `json:"changeKey"`
}

// FolderID identifies one folder in a mailbox.
type FolderID struct {
	ID        string `json:"id"`
	ChangeKey string `json:"changeKey"`
}

// Folder is one mailbox folder.
type Folder struct {
	ID               FolderID `json:"id"`
	Parent           string   `json:"parent"`
	DisplayName      string   `json:"displayName"`
	TotalCount       uint     `json:"totalCount"`
	ChildFolderCount uint     `json:"childFolderCount"`
	UnreadCount      uint     `json:"unreadCount"`
}

// Importance is the urgency marker carried on a message.
type Importance string

const (
	ImportanceLow    Importance = "Low"
	ImportanceNormal Importance = "Normal"
	ImportanceHigh   Importance = "High"
)

// Item is one mailbox item. Listing operations fill only the summary
// fields; GetItem fills everything.
type Item struct {
	ID                ItemID     `json:"id"`
	Subject           string     `json:"subject"`
	Received          time.Time  `json:"received"`
	IsRead            bool       `json:"isRead"`
	From              string     `json:"from"`
	HasAttachments    bool       `json:"hasAttachments"`
	ConversationID    string     `json:"conversationId,omitempty"`
	InternetMessageID string     `json:"internetMessageId,omitempty"`
	Body              string     `json:"body,omitempty"`
	BodyType          string     `json:"bodyType,omitempty"`
	To                []string   `json:"to,omitempty"`
	Cc                []string   `json:"cc,omitempty"`
	Bcc               []string   `json:"bcc,omitempty"`
	Importance        Importance `json:"importance,omitempty"`
}

// Attachment is metadata for one file attachment. Content is fetched
// separately with ReadAttachment.
type Attachment struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     uint      `json:"size"`
	Modified time.Time `json:"modified"`
}

// Message is an outgoing message for Send and Reply.
type Message struct {
	Subject    string
	Body       string
	HTML       bool
	Importance Importance
	To         []string
	Cc         []string
	Bcc        []string
}
