package service

import "log/slog"

const (
	EventStockUpdate   = "stock_update"
	EventOrderUpdate   = "order_update"
	EventReceiptUpdate = "receipt_update"
	EventCashUpdate    = "cash_update"
)

// EventPublisher fans committed changes out to realtime clients.
type EventPublisher interface {
	Publish(event string, payload map[string]interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, map[string]interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Actor identifies the operator behind a request, taken from the auth token.
type Actor struct {
	ID    string
	Name  string
	Store string
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{"id": a.ID, "name": a.Name}
}

func (a Actor) logAttr() slog.Attr {
	return slog.Group("actor", slog.String("id", a.ID), slog.String("name", a.Name))
}
