package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/exch-cli/exch/internal/ews"
	"github.com/exch-cli/exch/internal/output"
)

// WatchEventRow is a display struct for one streamed notification
type WatchEventRow struct {
	Time    string `json:"time"`
	Event   string `json:"event"`
	ItemID  string `json:"itemId,omitempty"`
	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	Folder  string `json:"folder,omitempty"`
}

// WatchCmd streams mailbox notifications until interrupted
type WatchCmd struct {
	Folder  string `help:"Folder to watch" default:"Inbox" short:"f"`
	NewMail bool   `help:"Only report new mail events" name:"new-mail"`
	Count   int    `help:"Exit after this many events (0 = run forever)" short:"n"`
}

// Run executes the watch command
func (cmd *WatchCmd) Run(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := sp.Mail()
	if err != nil {
		return err
	}

	folderID, err := sp.FolderByName(ctx, cmd.Folder)
	if err != nil {
		return err
	}

	delivered := 0
	onEvent := func(ev ews.Event) bool {
		if cmd.NewMail && ev.Kind != ews.EventNewMail {
			return true
		}
		if ev.Kind == ews.EventStatus && !globals.Verbose {
			return true
		}

		row := WatchEventRow{
			Time:   ev.Timestamp.Format(time.RFC3339),
			Event:  ev.Kind.String(),
			ItemID: ev.Item.ID,
			Folder: cmd.Folder,
		}

		// New mail carries an item worth describing inline.
		if ev.Kind == ews.EventNewMail && ev.Item.ID != "" {
			if item, err := svc.GetItem(ctx, ev.Item); err == nil && item != nil {
				row.Subject = item.Subject
				row.From = item.From
			}
		}

		fp.Formatter.Print(row)

		if ev.Kind != ews.EventStatus {
			delivered++
		}
		return cmd.Count == 0 || delivered < cmd.Count
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", cmd.Folder)

	// Each streaming connection lives at most the server-side timeout;
	// reconnect with backoff until the user interrupts or Count is reached.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	var kinds []ews.EventKind
	if cmd.NewMail {
		kinds = []ews.EventKind{ews.EventNewMail}
	}

	for {
		sub, err := svc.Subscribe(ctx, folderID, kinds...)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			wait := bo.NextBackOff()
			fmt.Fprintf(os.Stderr, "Subscribe failed (%v), retrying in %s\n", err, wait.Round(time.Second))
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		err = cmd.waitOn(ctx, sub, onEvent)

		if ctx.Err() != nil || (cmd.Count > 0 && delivered >= cmd.Count) {
			return nil
		}
		if err != nil {
			wait := bo.NextBackOff()
			fmt.Fprintf(os.Stderr, "Stream ended (%v), reconnecting in %s\n", err, wait.Round(time.Second))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		// Clean server-side timeout: reconnect immediately.
		bo.Reset()
	}
}

func (cmd *WatchCmd) waitOn(ctx context.Context, sub *ews.Subscription, onEvent func(ews.Event) bool) error {
	defer sub.Close()

	err := sub.Wait(ctx, 0, onEvent)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Notification stream failed: %v", err),
			ExitCode: output.ExitNetworkError,
		}
	}

	return nil
}
