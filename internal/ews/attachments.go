package ews

import (
	"context"
	"encoding/base64"

	"github.com/beevik/etree"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

// GetAttachments lists the real file attachments of one item. Inline images
// and contact photos are filtered out, since they are message decoration
// rather than things a user attached.
func (c *Client) GetAttachments(ctx context.Context, id ItemID) ([]Attachment, error) {
	var w xmlutil.Writer

	w.StartElement("m:GetItem")

	w.StartElement("m:ItemShape")
	w.ElementText("t:BaseShape", "IdOnly")
	w.StartElement("t:AdditionalProperties")
	w.StartElement("t:FieldURI")
	w.Attribute("FieldURI", "item:Attachments")
	w.EndElement()
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
		return nil, err
	}

	item, err := firstItem(msg)
	if err != nil {
		return nil, err
	}

	attsEl, err := xmlutil.FindChild(item, soap.NsTypes, "Attachments")
	if err != nil {
		// An item without the Attachments element simply has none.
		return nil, nil
	}

	var atts []Attachment
	xmlutil.EachChild(attsEl, soap.NsTypes, "FileAttachment", func(a *etree.Element) bool {
		if xmlutil.ChildText(a, soap.NsTypes, "IsInline") == "true" ||
			xmlutil.ChildText(a, soap.NsTypes, "IsContactPhoto") == "true" {
			return true
		}

		atts = append(atts, Attachment{
			ID:       xmlutil.ChildAttr(a, soap.NsTypes, "AttachmentId", "Id"),
			Name:     xmlutil.ChildText(a, soap.NsTypes, "Name"),
			Size:     parseUint(xmlutil.ChildText(a, soap.NsTypes, "Size")),
			Modified: parseTime(xmlutil.ChildText(a, soap.NsTypes, "LastModifiedTime")),
		})
		return true
	})

	return atts, nil
}

// ReadAttachment downloads and decodes one attachment's content.
func (c *Client) ReadAttachment(ctx context.Context, attachmentID string) ([]byte, error) {
	var w xmlutil.Writer

	w.StartElement("m:GetAttachment")
	w.StartElement("m:AttachmentIds")
	w.StartElement("t:AttachmentId")
	w.Attribute("Id", attachmentID)
	w.EndElement()
	w.EndElement()
	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return nil, err
	}

	msg, err := responseMessage(body, "GetAttachment")
	if err != nil {
		return nil, err
	}

	attsEl, err := xmlutil.FindChild(msg, soap.NsMessages, "Attachments")
	if err != nil {
		return nil, err
	}

	att, err := xmlutil.FindChild(attsEl, soap.NsTypes, "FileAttachment")
	if err != nil {
		return nil, err
	}

	content, err := xmlutil.FindChild(att, soap.NsTypes, "Content")
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(content.Text())
	if err != nil {
		return nil, &soap.MalformedResponseError{Reason: "attachment content is not valid base64"}
	}

	return data, nil
}
