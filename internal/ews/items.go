package ews

import (
	"context"
	"errors"

	"github.com/beevik/etree"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

// summaryFields are the additional properties requested when listing items.
var summaryFields = []string{
	"item:Subject",
	"item:DateTimeReceived",
	"message:IsRead",
	"message:From",
	"item:HasAttachments",
	"item:ConversationId",
	"message:InternetMessageId",
}

// FindItems lists the items directly inside one folder, oldest first by
// receive time.
func (c *Client) FindItems(ctx context.Context, folder FolderID) ([]Item, error) {
	var w xmlutil.Writer

	w.StartElement("m:FindItem")
	w.Attribute("Traversal", "Shallow")

	w.StartElement("m:ItemShape")
	w.ElementText("t:BaseShape", "IdOnly")
	w.StartElement("t:AdditionalProperties")
	for _, f := range summaryFields {
		w.StartElement("t:FieldURI")
		w.Attribute("FieldURI", f)
		w.EndElement()
	}
	w.EndElement()
	w.EndElement()

	w.StartElement("m:SortOrder")
	w.StartElement("t:FieldOrder")
	w.Attribute("Order", "Ascending")
	w.StartElement("t:FieldURI")
	w.Attribute("FieldURI", "item:DateTimeReceived")
	w.EndElement()
	w.EndElement()
	w.EndElement()

	w.StartElement("m:ParentFolderIds")
	w.StartElement("t:FolderId")
	w.Attribute("Id", folder.ID)
	if folder.ChangeKey != "" {
		w.Attribute("ChangeKey", folder.ChangeKey)
	}
	w.EndElement()
	w.EndElement()

	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return nil, err
	}

	msg, err := responseMessage(body, "FindItem")
	if err != nil {
		return nil, err
	}

	root, err := xmlutil.FindChild(msg, soap.NsMessages, "RootFolder")
	if err != nil {
		return nil, err
	}

	itemsEl, err := xmlutil.FindChild(root, soap.NsTypes, "Items")
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, el := range itemsEl.ChildElements() {
		if el.NamespaceURI() != soap.NsTypes {
			continue
		}
		items = append(items, parseItem(el))
	}

	return items, nil
}

// GetItem fetches one item with its full body and recipients. A nil item with
// a nil error means the item no longer exists, which is routine when racing
// against mail moving between folders.
func (c *Client) GetItem(ctx context.Context, id ItemID) (*Item, error) {
	var w xmlutil.Writer

	w.StartElement("m:GetItem")

	w.StartElement("m:ItemShape")
	w.ElementText("t:BaseShape", "IdOnly")
	w.StartElement("t:AdditionalProperties")
	for _, f := range append(summaryFields,
		"item:Body",
		"message:ToRecipients",
		"message:CcRecipients",
		"message:BccRecipients",
		"item:Importance",
	) {
		w.StartElement("t:FieldURI")
		w.Attribute("FieldURI", f)
		w.EndElement()
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
		return nil, err
	}

	msg, err := responseMessage(body, "GetItem")
	if err != nil {
		var opErr *OperationError
		if errors.As(err, &opErr) && opErr.ResponseCode == "ErrorItemNotFound" {
			return nil, nil
		}
		return nil, err
	}

	el, err := firstItem(msg)
	if err != nil {
		return nil, err
	}

	item := parseItem(el)

	if bodyEl, err := xmlutil.FindChild(el, soap.NsTypes, "Body"); err == nil {
		item.Body = bodyEl.Text()
		item.BodyType = xmlutil.Attr(bodyEl, "BodyType")
	}

	item.To = parseRecipients(el, "ToRecipients")
	item.Cc = parseRecipients(el, "CcRecipients")
	item.Bcc = parseRecipients(el, "BccRecipients")
	item.Importance = Importance(xmlutil.ChildText(el, soap.NsTypes, "Importance"))

	return &item, nil
}

// firstItem returns the first element inside a response message's m:Items.
func firstItem(msg *etree.Element) (*etree.Element, error) {
	items, err := xmlutil.FindChild(msg, soap.NsMessages, "Items")
	if err != nil {
		return nil, err
	}

	for _, el := range items.ChildElements() {
		if el.NamespaceURI() == soap.NsTypes {
			return el, nil
		}
	}

	return nil, &xmlutil.TagNotFoundError{Name: "Message"}
}

func parseItem(el *etree.Element) Item {
	return Item{
		ID: ItemID{
			ID:        xmlutil.ChildAttr(el, soap.NsTypes, "ItemId", "Id"),
			ChangeKey: xmlutil.ChildAttr(el, soap.NsTypes, "ItemId", "ChangeKey"),
		},
		Subject:           xmlutil.ChildText(el, soap.NsTypes, "Subject"),
		Received:          parseTime(xmlutil.ChildText(el, soap.NsTypes, "DateTimeReceived")),
		IsRead:            xmlutil.ChildText(el, soap.NsTypes, "IsRead") == "true",
		From:              parseMailboxAddress(el, "From"),
		HasAttachments:    xmlutil.ChildText(el, soap.NsTypes, "HasAttachments") == "true",
		ConversationID:    xmlutil.ChildAttr(el, soap.NsTypes, "ConversationId", "Id"),
		InternetMessageID: xmlutil.ChildText(el, soap.NsTypes, "InternetMessageId"),
	}
}

// parseMailboxAddress digs the SMTP address out of t:<name>/t:Mailbox,
// falling back to the display name for distribution lists without one.
func parseMailboxAddress(el *etree.Element, name string) string {
	wrapper, err := xmlutil.FindChild(el, soap.NsTypes, name)
	if err != nil {
		return ""
	}

	mbox, err := xmlutil.FindChild(wrapper, soap.NsTypes, "Mailbox")
	if err != nil {
		return ""
	}

	if addr := xmlutil.ChildText(mbox, soap.NsTypes, "EmailAddress"); addr != "" {
		return addr
	}

	return xmlutil.ChildText(mbox, soap.NsTypes, "Name")
}

func parseRecipients(el *etree.Element, name string) []string {
	wrapper, err := xmlutil.FindChild(el, soap.NsTypes, name)
	if err != nil {
		return nil
	}

	var out []string
	xmlutil.EachChild(wrapper, soap.NsTypes, "Mailbox", func(mbox *etree.Element) bool {
		if addr := xmlutil.ChildText(mbox, soap.NsTypes, "EmailAddress"); addr != "" {
			out = append(out, addr)
		} else if n := xmlutil.ChildText(mbox, soap.NsTypes, "Name"); n != "" {
			out = append(out, n)
		}
		return true
	})

	return out
}
