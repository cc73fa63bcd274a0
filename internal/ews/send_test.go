package ews

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("CreateItem", ""), &requests)

	err := c.Send(context.Background(), Message{
		Subject:    "Quarterly numbers",
		Body:       "<p>See below.</p>",
		HTML:       true,
		Importance: ImportanceHigh,
		To:         []string{"bob@example.com"},
		Cc:         []string{"carol@example.com", "dave@example.com"},
	})
	require.NoError(t, err)

	require.Len(t, requests, 1)
	req := requests[0]

	assert.Contains(t, req, `MessageDisposition="SendAndSaveCopy"`)
	assert.Contains(t, req, `<t:DistinguishedFolderId Id="sentitems" />`)
	assert.Contains(t, req, `<t:Subject>Quarterly numbers</t:Subject>`)
	assert.Contains(t, req, `<t:Body BodyType="HTML">&lt;p&gt;See below.&lt;/p&gt;</t:Body>`)
	assert.Contains(t, req, `<t:Importance>High</t:Importance>`)
	assert.Contains(t, req, `<t:ToRecipients><t:Mailbox><t:EmailAddress>bob@example.com</t:EmailAddress></t:Mailbox></t:ToRecipients>`)
	assert.Contains(t, req, `carol@example.com`)

	// No Bcc was given, so no Bcc block may appear.
	assert.NotContains(t, req, "BccRecipients")
}

func TestSendPlainTextDefaults(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("CreateItem", ""), &requests)

	err := c.Send(context.Background(), Message{
		Subject: "hi",
		Body:    "plain words",
		To:      []string{"bob@example.com"},
	})
	require.NoError(t, err)

	req := requests[0]
	assert.Contains(t, req, `<t:Body BodyType="Text">plain words</t:Body>`)

	// Normal importance stays implicit.
	assert.NotContains(t, req, "t:Importance")
	assert.NotContains(t, req, "CcRecipients")
	assert.NotContains(t, req, "BccRecipients")
}

func TestSendFieldOrder(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("CreateItem", ""), &requests)

	err := c.Send(context.Background(), Message{
		Subject:    "s",
		Body:       "b",
		Importance: ImportanceLow,
		To:         []string{"to@example.com"},
		Cc:         []string{"cc@example.com"},
		Bcc:        []string{"bcc@example.com"},
	})
	require.NoError(t, err)

	req := requests[0]
	order := []string{"t:Subject", "t:Body", "t:Importance", "t:ToRecipients", "t:CcRecipients", "t:BccRecipients"}

	last := -1
	for _, tag := range order {
		pos := strings.Index(req, "<"+tag)
		require.GreaterOrEqual(t, pos, 0, tag)
		assert.Greater(t, pos, last, "%s out of order", tag)
		last = pos
	}
}

func TestReply(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("CreateItem", ""), &requests)

	err := c.Reply(context.Background(), ItemID{ID: "AAMkOne", ChangeKey: "CK1"}, "Thanks!", false)
	require.NoError(t, err)

	req := requests[0]
	assert.Contains(t, req, "<t:ReplyToItem>")
	assert.NotContains(t, req, "ReplyAllToItem")
	assert.Contains(t, req, `<t:ReferenceItemId Id="AAMkOne" ChangeKey="CK1" />`)
	assert.Contains(t, req, `<t:NewBodyContent>Thanks!</t:NewBodyContent>`)
}

func TestReplyAll(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("CreateItem", ""), &requests)

	err := c.Reply(context.Background(), ItemID{ID: "AAMkOne", ChangeKey: "CK1"}, "Thanks all!", true)
	require.NoError(t, err)

	assert.Contains(t, requests[0], "<t:ReplyAllToItem>")
}
