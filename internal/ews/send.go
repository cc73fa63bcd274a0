package ews

import (
	"context"

	"github.com/exch-cli/exch/internal/xmlutil"
)

// Send sends a new message, saving a copy in sent items.
func (c *Client) Send(ctx context.Context, msg Message) error {
	var w xmlutil.Writer

	w.StartElement("m:CreateItem")
	w.Attribute("MessageDisposition", "SendAndSaveCopy")

	w.StartElement("m:SavedItemFolderId")
	w.StartElement("t:DistinguishedFolderId")
	w.Attribute("Id", "sentitems")
	w.EndElement()
	w.EndElement()

	w.StartElement("m:Items")
	w.StartElement("t:Message")

	w.ElementText("t:Subject", msg.Subject)

	w.StartElement("t:Body")
	if msg.HTML {
		w.Attribute("BodyType", "HTML")
	} else {
		w.Attribute("BodyType", "Text")
	}
	w.Text(msg.Body)
	w.EndElement()

	// Normal importance is the server default and is left implicit.
	if msg.Importance != "" && msg.Importance != ImportanceNormal {
		w.ElementText("t:Importance", string(msg.Importance))
	}

	writeRecipients(&w, "t:ToRecipients", msg.To)
	writeRecipients(&w, "t:CcRecipients", msg.Cc)
	writeRecipients(&w, "t:BccRecipients", msg.Bcc)

	w.EndElement()
	w.EndElement()

	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return err
	}

	_, err = responseMessage(body, "CreateItem")

	return err
}

// Reply sends a reply to an existing item. With replyAll the reply goes to
// every original recipient, otherwise to the sender alone.
func (c *Client) Reply(ctx context.Context, id ItemID, body string, replyAll bool) error {
	tag := "t:ReplyToItem"
	if replyAll {
		tag = "t:ReplyAllToItem"
	}

	var w xmlutil.Writer

	w.StartElement("m:CreateItem")
	w.Attribute("MessageDisposition", "SendAndSaveCopy")

	w.StartElement("m:SavedItemFolderId")
	w.StartElement("t:DistinguishedFolderId")
	w.Attribute("Id", "sentitems")
	w.EndElement()
	w.EndElement()

	w.StartElement("m:Items")
	w.StartElement(tag)

	w.StartElement("t:ReferenceItemId")
	w.Attribute("Id", id.ID)
	w.Attribute("ChangeKey", id.ChangeKey)
	w.EndElement()

	w.ElementText("t:NewBodyContent", body)

	w.EndElement()
	w.EndElement()

	w.EndElement()

	respBody, err := c.call(ctx, w.Dump())
	if err != nil {
		return err
	}

	_, err = responseMessage(respBody, "CreateItem")

	return err
}

// writeRecipients writes one recipient block, or nothing when the list is
// empty. Exchange rejects empty recipient elements.
func writeRecipients(w *xmlutil.Writer, tag string, addrs []string) {
	if len(addrs) == 0 {
		return
	}

	w.StartElement(tag)
	for _, a := range addrs {
		w.StartElement("t:Mailbox")
		w.ElementText("t:EmailAddress", a)
		w.EndElement()
	}
	w.EndElement()
}
