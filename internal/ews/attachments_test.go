package ews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attachmentsFixture = `<m:Items>
  <t:Message>
    <t:ItemId Id="AAMkOne" ChangeKey="CK1" />
    <t:Attachments>
      <t:FileAttachment>
        <t:AttachmentId Id="AttReport" />
        <t:Name>report.pdf</t:Name>
        <t:Size>20480</t:Size>
        <t:LastModifiedTime>2026-08-29T16:00:00Z</t:LastModifiedTime>
        <t:IsInline>false</t:IsInline>
        <t:IsContactPhoto>false</t:IsContactPhoto>
      </t:FileAttachment>
      <t:FileAttachment>
        <t:AttachmentId Id="AttLogo" />
        <t:Name>logo.png</t:Name>
        <t:Size>512</t:Size>
        <t:IsInline>true</t:IsInline>
      </t:FileAttachment>
      <t:FileAttachment>
        <t:AttachmentId Id="AttPhoto" />
        <t:Name>ContactPicture.jpg</t:Name>
        <t:IsContactPhoto>true</t:IsContactPhoto>
      </t:FileAttachment>
    </t:Attachments>
  </t:Message>
</m:Items>`

func TestGetAttachments(t *testing.T) {
	c := newTestClient(t, successResponse("GetItem", attachmentsFixture), nil)

	atts, err := c.GetAttachments(context.Background(), ItemID{ID: "AAMkOne", ChangeKey: "CK1"})
	require.NoError(t, err)

	// Inline image and contact photo are filtered out.
	require.Len(t, atts, 1)
	assert.Equal(t, Attachment{
		ID:       "AttReport",
		Name:     "report.pdf",
		Size:     20480,
		Modified: time.Date(2026, 8, 29, 16, 0, 0, 0, time.UTC),
	}, atts[0])
}

func TestGetAttachmentsNone(t *testing.T) {
	fixture := `<m:Items><t:Message><t:ItemId Id="AAMkOne" /></t:Message></m:Items>`
	c := newTestClient(t, successResponse("GetItem", fixture), nil)

	atts, err := c.GetAttachments(context.Background(), ItemID{ID: "AAMkOne"})
	require.NoError(t, err)
	assert.Empty(t, atts)
}

func TestReadAttachment(t *testing.T) {
	// "hello attachment" in base64.
	fixture := `<m:Attachments>
  <t:FileAttachment>
    <t:AttachmentId Id="AttReport" />
    <t:Name>report.pdf</t:Name>
    <t:Content>aGVsbG8gYXR0YWNobWVudA==</t:Content>
  </t:FileAttachment>
</m:Attachments>`

	var requests []string
	c := newTestClient(t, successResponse("GetAttachment", fixture), &requests)

	data, err := c.ReadAttachment(context.Background(), "AttReport")
	require.NoError(t, err)
	assert.Equal(t, "hello attachment", string(data))

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<t:AttachmentId Id="AttReport" />`)
}

func TestReadAttachmentBadBase64(t *testing.T) {
	fixture := `<m:Attachments>
  <t:FileAttachment>
    <t:AttachmentId Id="AttReport" />
    <t:Content>this is not base64!!</t:Content>
  </t:FileAttachment>
</m:Attachments>`

	c := newTestClient(t, successResponse("GetAttachment", fixture), nil)

	_, err := c.ReadAttachment(context.Background(), "AttReport")
	assert.Error(t, err)
}
