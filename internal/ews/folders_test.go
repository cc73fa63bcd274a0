package ews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const findFolderFixture = `<m:RootFolder TotalItemsInView="2" IncludesLastItemInRange="true">
  <t:Folders>
    <t:Folder>
      <t:FolderId Id="AAMkInbox" ChangeKey="CK1" />
      <t:ParentFolderId Id="AAMkRoot" ChangeKey="CK0" />
      <t:DisplayName>Inbox</t:DisplayName>
      <t:TotalCount>42</t:TotalCount>
      <t:ChildFolderCount>1</t:ChildFolderCount>
      <t:UnreadCount>7</t:UnreadCount>
    </t:Folder>
    <t:Folder>
      <t:FolderId Id="AAMkArchive" ChangeKey="CK2" />
      <t:ParentFolderId Id="AAMkInbox" ChangeKey="CK1" />
      <t:DisplayName>Archive</t:DisplayName>
      <t:TotalCount>100</t:TotalCount>
      <t:ChildFolderCount>0</t:ChildFolderCount>
    </t:Folder>
  </t:Folders>
</m:RootFolder>`

func TestFindFolders(t *testing.T) {
	var requests []string
	c := newTestClient(t, successResponse("FindFolder", findFolderFixture), &requests)

	folders, err := c.FindFolders(context.Background())
	require.NoError(t, err)

	require.Len(t, folders, 2)
	assert.Equal(t, Folder{
		ID:               FolderID{ID: "AAMkInbox", ChangeKey: "CK1"},
		Parent:           "AAMkRoot",
		DisplayName:      "Inbox",
		TotalCount:       42,
		ChildFolderCount: 1,
		UnreadCount:      7,
	}, folders[0])

	// UnreadCount is absent on the second folder and defaults to zero.
	assert.Equal(t, "Archive", folders[1].DisplayName)
	assert.Zero(t, folders[1].UnreadCount)

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `Traversal="Deep"`)
	assert.Contains(t, requests[0], `<t:DistinguishedFolderId Id="root" />`)
	assert.Contains(t, requests[0], `FieldURI="folder:ParentFolderId"`)
}

func TestCreateFolderIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the folder already exists")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", Options{})

	existing := []Folder{
		{ID: FolderID{ID: "AAMkProjects", ChangeKey: "CK9"}, Parent: "AAMkInbox", DisplayName: "Projects"},
	}

	id, err := c.CreateFolder(context.Background(), existing, FolderID{ID: "AAMkInbox"}, "Projects")
	require.NoError(t, err)
	assert.Equal(t, FolderID{ID: "AAMkProjects", ChangeKey: "CK9"}, id)
}

func TestCreateFolder(t *testing.T) {
	fixture := `<m:Folders>
  <t:Folder>
    <t:FolderId Id="AAMkNew" ChangeKey="CKn" />
  </t:Folder>
</m:Folders>`

	var requests []string
	c := newTestClient(t, successResponse("CreateFolder", fixture), &requests)

	// Same parent, different name: the existing entry must not satisfy the
	// call.
	existing := []Folder{
		{ID: FolderID{ID: "AAMkOther"}, Parent: "AAMkInbox", DisplayName: "Other"},
	}

	id, err := c.CreateFolder(context.Background(), existing, FolderID{ID: "AAMkInbox", ChangeKey: "CK1"}, "Projects")
	require.NoError(t, err)
	assert.Equal(t, FolderID{ID: "AAMkNew", ChangeKey: "CKn"}, id)

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<t:FolderId Id="AAMkInbox" ChangeKey="CK1" />`)
	assert.Contains(t, requests[0], `<t:DisplayName>Projects</t:DisplayName>`)
}

func TestMoveItem(t *testing.T) {
	fixture := `<m:Items>
  <t:Message>
    <t:ItemId Id="AAMkMoved" ChangeKey="CKm" />
  </t:Message>
</m:Items>`

	var requests []string
	c := newTestClient(t, successResponse("MoveItem", fixture), &requests)

	moved, err := c.MoveItem(context.Background(),
		ItemID{ID: "AAMkOld", ChangeKey: "CKo"},
		FolderID{ID: "AAMkArchive"})
	require.NoError(t, err)
	assert.Equal(t, ItemID{ID: "AAMkMoved", ChangeKey: "CKm"}, moved)

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], `<t:FolderId Id="AAMkArchive" />`)
	assert.Contains(t, requests[0], `<t:ItemId Id="AAMkOld" ChangeKey="CKo" />`)
}
