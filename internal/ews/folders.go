package ews

import (
	"context"

	"github.com/beevik/etree"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

// FindFolders returns every folder in the mailbox, walking the full hierarchy
// from the root.
func (c *Client) FindFolders(ctx context.Context) ([]Folder, error) {
	var w xmlutil.Writer

	w.StartElement("m:FindFolder")
	w.Attribute("Traversal", "Deep")

	w.StartElement("m:FolderShape")
	w.ElementText("t:BaseShape", "Default")
	w.StartElement("t:AdditionalProperties")
	w.StartElement("t:FieldURI")
	w.Attribute("FieldURI", "folder:ParentFolderId")
	w.EndElement()
	w.EndElement()
	w.EndElement()

	w.StartElement("m:ParentFolderIds")
	w.StartElement("t:DistinguishedFolderId")
	w.Attribute("Id", "root")
	w.EndElement()
	w.EndElement()

	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return nil, err
	}

	msg, err := responseMessage(body, "FindFolder")
	if err != nil {
		return nil, err
	}

	root, err := xmlutil.FindChild(msg, soap.NsMessages, "RootFolder")
	if err != nil {
		return nil, err
	}

	foldersEl, err := xmlutil.FindChild(root, soap.NsTypes, "Folders")
	if err != nil {
		return nil, err
	}

	var folders []Folder
	for _, f := range foldersEl.ChildElements() {
		if f.NamespaceURI() != soap.NsTypes {
			continue
		}
		folders = append(folders, parseFolder(f))
	}

	return folders, nil
}

func parseFolder(el *etree.Element) Folder {
	return Folder{
		ID: FolderID{
			ID:        xmlutil.ChildAttr(el, soap.NsTypes, "FolderId", "Id"),
			ChangeKey: xmlutil.ChildAttr(el, soap.NsTypes, "FolderId", "ChangeKey"),
		},
		Parent:           xmlutil.ChildAttr(el, soap.NsTypes, "ParentFolderId", "Id"),
		DisplayName:      xmlutil.ChildText(el, soap.NsTypes, "DisplayName"),
		TotalCount:       parseUint(xmlutil.ChildText(el, soap.NsTypes, "TotalCount")),
		ChildFolderCount: parseUint(xmlutil.ChildText(el, soap.NsTypes, "ChildFolderCount")),
		UnreadCount:      parseUint(xmlutil.ChildText(el, soap.NsTypes, "UnreadCount")),
	}
}

// CreateFolder creates a folder under parent. folders is the caller's current
// view of the mailbox; when it already holds a folder with this parent and
// name, that folder's ID is returned without touching the network, making
// repeated calls idempotent.
func (c *Client) CreateFolder(ctx context.Context, folders []Folder, parent FolderID, name string) (FolderID, error) {
	for _, f := range folders {
		if f.Parent == parent.ID && f.DisplayName == name {
			return f.ID, nil
		}
	}

	var w xmlutil.Writer

	w.StartElement("m:CreateFolder")

	w.StartElement("m:ParentFolderId")
	w.StartElement("t:FolderId")
	w.Attribute("Id", parent.ID)
	if parent.ChangeKey != "" {
		w.Attribute("ChangeKey", parent.ChangeKey)
	}
	w.EndElement()
	w.EndElement()

	w.StartElement("m:Folders")
	w.StartElement("t:Folder")
	w.ElementText("t:DisplayName", name)
	w.EndElement()
	w.EndElement()

	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return FolderID{}, err
	}

	msg, err := responseMessage(body, "CreateFolder")
	if err != nil {
		return FolderID{}, err
	}

	foldersEl, err := xmlutil.FindChild(msg, soap.NsMessages, "Folders")
	if err != nil {
		return FolderID{}, err
	}

	created, err := xmlutil.FindChild(foldersEl, soap.NsTypes, "Folder")
	if err != nil {
		return FolderID{}, err
	}

	return FolderID{
		ID:        xmlutil.ChildAttr(created, soap.NsTypes, "FolderId", "Id"),
		ChangeKey: xmlutil.ChildAttr(created, soap.NsTypes, "FolderId", "ChangeKey"),
	}, nil
}

// MoveItem moves one item into the given folder and returns the item's new
// ID. Exchange reassigns IDs on move, so the old one is invalid afterwards.
func (c *Client) MoveItem(ctx context.Context, id ItemID, to FolderID) (ItemID, error) {
	var w xmlutil.Writer

	w.StartElement("m:MoveItem")

	w.StartElement("m:ToFolderId")
	w.StartElement("t:FolderId")
	w.Attribute("Id", to.ID)
	if to.ChangeKey != "" {
		w.Attribute("ChangeKey", to.ChangeKey)
	}
	w.EndElement()
	w.EndElement()

	w.StartElement("m:ItemIds")
	w.StartElement("t:ItemId")
	w.Attribute("Id", id.ID)
	w.Attribute("ChangeKey", id.ChangeKey)
	w.EndElement()
	w.EndElement()

	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return ItemID{}, err
	}

	msg, err := responseMessage(body, "MoveItem")
	if err != nil {
		return ItemID{}, err
	}

	items, err := xmlutil.FindChild(msg, soap.NsMessages, "Items")
	if err != nil {
		return ItemID{}, err
	}

	moved, err := xmlutil.FindChild(items, soap.NsTypes, "Message")
	if err != nil {
		return ItemID{}, err
	}

	return ItemID{
		ID:        xmlutil.ChildAttr(moved, soap.NsTypes, "ItemId", "Id"),
		ChangeKey: xmlutil.ChildAttr(moved, soap.NsTypes, "ItemId", "ChangeKey"),
	}, nil
}
