package services

import (
	"fmt"
	"log/slog"

	"darshan-system/models"
	"darshan-system/utils"

	pubnub "github.com/pubnub/go"
)

// Broadcast channels. Dashboards follow zones-update, gate terminals
// and trackers follow ticket-status, each booking owner additionally
// gets a private user-<id> channel.
const (
	channelZones        = "zones-update"
	channelTicketStatus = "ticket-status"
)

// Publisher fans out state changes to connected observers. Delivery is
// best effort: implementations must never fail or block the mutation
// that triggered the publish.
type Publisher interface {
	PublishZones(zones []models.ZoneSnapshot)
	PublishTicketStatus(evt models.TicketStatusEvent)
	PublishUserTicket(userID string, evt models.TicketStatusEvent)
}

// PubNubBroadcaster publishes over PubNub. Publishes run in their own
// goroutine behind a circuit breaker, so a dead broker costs one
// failed call instead of a hung scan.
type PubNubBroadcaster struct {
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewPubNubBroadcaster(pn *pubnub.PubNub) *PubNubBroadcaster {
	return &PubNubBroadcaster{
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("pubnub"),
	}
}

func (b *PubNubBroadcaster) PublishZones(zones []models.ZoneSnapshot) {
	b.publish(channelZones, map[string]any{
		"type":  "zones_update",
		"zones": zones,
	})
}

func (b *PubNubBroadcaster) PublishTicketStatus(evt models.TicketStatusEvent) {
	b.publish(channelTicketStatus, map[string]any{
		"type":        "ticket_update",
		"ticket_code": evt.TicketCode,
		"status":      evt.Status,
		"zone_name":   evt.ZoneName,
		"action":      evt.Action,
		"timestamp":   evt.Timestamp,
	})
}

func (b *PubNubBroadcaster) PublishUserTicket(userID string, evt models.TicketStatusEvent) {
	b.publish(fmt.Sprintf("user-%s", userID), map[string]any{
		"type":        "ticket_update",
		"ticket_code": evt.TicketCode,
		"status":      evt.Status,
		"timestamp":   evt.Timestamp,
	})
}

func (b *PubNubBroadcaster) publish(channel string, message map[string]any) {
	if b.pubnub == nil {
		return
	}

	go func() {
		err := b.breaker.Do(func() error {
			_, _, err := b.pubnub.Publish().
				Channel(channel).
				Message(message).
				Execute()
			return err
		})
		if err != nil {
			slog.Error("broadcast publish failed", "channel", channel, "error", err)
		}
	}()
}
