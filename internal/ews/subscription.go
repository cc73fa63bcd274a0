package ews

import (
	"context"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/exch-cli/exch/internal/soap"
	"github.com/exch-cli/exch/internal/xmlutil"
)

// EventKind classifies a mailbox notification.
type EventKind int

const (
	EventNewMail EventKind = iota
	EventCreated
	EventDeleted
	EventModified
	EventMoved
	EventCopied
	EventFreeBusyChanged
	EventStatus
)

var eventTags = map[string]EventKind{
	"NewMailEvent":         EventNewMail,
	"CreatedEvent":         EventCreated,
	"DeletedEvent":         EventDeleted,
	"ModifiedEvent":        EventModified,
	"MovedEvent":           EventMoved,
	"CopiedEvent":          EventCopied,
	"FreeBusyChangedEvent": EventFreeBusyChanged,
	"StatusEvent":          EventStatus,
}

var eventTypeTags = map[EventKind]string{
	EventNewMail:         "NewMailEvent",
	EventCreated:         "CreatedEvent",
	EventDeleted:         "DeletedEvent",
	EventModified:        "ModifiedEvent",
	EventMoved:           "MovedEvent",
	EventCopied:          "CopiedEvent",
	EventFreeBusyChanged: "FreeBusyChangedEvent",
}

// subscribableKinds is every kind that can be requested at Subscribe time.
// Status heartbeats are sent by the server on their own and are never part of
// the request.
var subscribableKinds = []EventKind{
	EventNewMail, EventCreated, EventDeleted, EventModified,
	EventMoved, EventCopied, EventFreeBusyChanged,
}

var eventNames = map[EventKind]string{
	EventNewMail:         "new-mail",
	EventCreated:         "created",
	EventDeleted:         "deleted",
	EventModified:        "modified",
	EventMoved:           "moved",
	EventCopied:          "copied",
	EventFreeBusyChanged: "free-busy-changed",
	EventStatus:          "status",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is one mailbox notification. Item and Parent are filled when the
// event carries them; status heartbeats carry neither.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Item      ItemID    `json:"item,omitzero"`
	Parent    FolderID  `json:"parent,omitzero"`
}

// defaultSubscriptionTimeout is the server-side connection lifetime requested
// for each streaming call, in minutes. Exchange closes the stream cleanly
// when it elapses; Wait can simply be called again.
const defaultSubscriptionTimeout = 30

// Subscription is an active streaming subscription on one folder. It is not
// safe for concurrent use. Once cancelled, Wait and Cancel fail with
// InvalidStateError.
type Subscription struct {
	client    *Client
	id        string
	cancelled bool
}

// Subscribe opens a streaming subscription on one folder for the given event
// kinds. No kinds means every subscribable kind.
func (c *Client) Subscribe(ctx context.Context, folder FolderID, kinds ...EventKind) (*Subscription, error) {
	if len(kinds) == 0 {
		kinds = subscribableKinds
	}

	var w xmlutil.Writer

	w.StartElement("m:Subscribe")
	w.StartElement("m:StreamingSubscriptionRequest")

	w.StartElement("t:FolderIds")
	w.StartElement("t:FolderId")
	w.Attribute("Id", folder.ID)
	if folder.ChangeKey != "" {
		w.Attribute("ChangeKey", folder.ChangeKey)
	}
	w.EndElement()
	w.EndElement()

	w.StartElement("t:EventTypes")
	for _, k := range kinds {
		if tag, ok := eventTypeTags[k]; ok {
			w.ElementText("t:EventType", tag)
		}
	}
	w.EndElement()

	w.EndElement()
	w.EndElement()

	body, err := c.call(ctx, w.Dump())
	if err != nil {
		return nil, &SubscribeError{Reason: "request failed", Err: err}
	}

	msg, err := responseMessage(body, "Subscribe")
	if err != nil {
		return nil, &SubscribeError{Reason: "request rejected", Err: err}
	}

	id := xmlutil.ChildText(msg, soap.NsMessages, "SubscriptionId")
	if id == "" {
		return nil, &SubscribeError{Reason: "response carried no subscription id"}
	}

	return &Subscription{client: c, id: id}, nil
}

// ID returns the server-assigned subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Wait holds a streaming connection open for up to timeoutMinutes and
// delivers notifications to onEvent as they arrive. It returns when the
// server ends the connection, the context is cancelled, or onEvent returns
// false. A non-positive timeout uses the default. Status heartbeats are
// delivered like any other event so callers can observe liveness.
func (s *Subscription) Wait(ctx context.Context, timeoutMinutes int, onEvent func(Event) bool) error {
	if s.cancelled {
		return &InvalidStateError{Op: "wait"}
	}
	if timeoutMinutes <= 0 {
		timeoutMinutes = defaultSubscriptionTimeout
	}

	var w xmlutil.Writer

	w.StartElement("m:GetStreamingEvents")
	w.StartElement("m:SubscriptionIds")
	w.ElementText("t:SubscriptionId", s.id)
	w.EndElement()
	w.ElementText("m:ConnectionTimeout", strconv.Itoa(timeoutMinutes))
	w.EndElement()

	tr := &soap.Transport{Client: s.client.stream, Username: s.client.username, Password: s.client.password}

	var inner error
	err := tr.CallStream(ctx, s.client.endpoint, "", requestHeader(), w.Dump(), func(body *etree.Element) bool {
		events, err := parseNotifications(body)
		if err != nil {
			inner = err
			return false
		}

		for _, ev := range events {
			if !onEvent(ev) {
				return false
			}
		}

		return true
	})

	if inner != nil {
		return inner
	}

	return err
}

func parseNotifications(body *etree.Element) ([]Event, error) {
	msg, err := responseMessage(body, "GetStreamingEvents")
	if err != nil {
		return nil, err
	}

	notifsEl, err := xmlutil.FindChild(msg, soap.NsMessages, "Notifications")
	if err != nil {
		// Heartbeat envelopes carry a connection status and no
		// notifications.
		return nil, nil
	}

	var events []Event
	xmlutil.EachChild(notifsEl, soap.NsMessages, "Notification", func(n *etree.Element) bool {
		for _, el := range n.ChildElements() {
			if el.NamespaceURI() != soap.NsTypes {
				continue
			}

			kind, ok := eventTags[el.Tag]
			if !ok {
				// SubscriptionId, PreviousWatermark, MoreEvents and any
				// event types added by newer servers.
				continue
			}

			events = append(events, Event{
				Kind:      kind,
				Timestamp: parseTime(xmlutil.ChildText(el, soap.NsTypes, "TimeStamp")),
				Item: ItemID{
					ID:        xmlutil.ChildAttr(el, soap.NsTypes, "ItemId", "Id"),
					ChangeKey: xmlutil.ChildAttr(el, soap.NsTypes, "ItemId", "ChangeKey"),
				},
				Parent: FolderID{
					ID:        xmlutil.ChildAttr(el, soap.NsTypes, "ParentFolderId", "Id"),
					ChangeKey: xmlutil.ChildAttr(el, soap.NsTypes, "ParentFolderId", "ChangeKey"),
				},
			})
		}
		return true
	})

	return events, nil
}

// Cancel unsubscribes on the server. The subscription is marked cancelled
// only when the server accepts; a second Cancel fails with
// InvalidStateError.
func (s *Subscription) Cancel(ctx context.Context) error {
	if s.cancelled {
		return &InvalidStateError{Op: "cancel"}
	}

	var w xmlutil.Writer

	w.StartElement("m:Unsubscribe")
	w.ElementText("m:SubscriptionId", s.id)
	w.EndElement()

	body, err := s.client.call(ctx, w.Dump())
	if err != nil {
		return err
	}

	if _, err := responseMessage(body, "Unsubscribe"); err != nil {
		return err
	}

	s.cancelled = true

	return nil
}

// Close cancels the subscription if still active, swallowing any error. Meant
// for deferred teardown where a failed unsubscribe is harmless: the server
// expires orphaned subscriptions on its own.
func (s *Subscription) Close() error {
	if !s.cancelled {
		_ = s.Cancel(context.Background())
	}

	return nil
}
