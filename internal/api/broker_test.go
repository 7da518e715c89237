package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("shipments")
	b.Publish("shipments", SSEEvent{Type: "shipment.updated", Data: map[string]any{"id": 3}})
	select {
	case evt := <-ch:
		if evt.Type != "shipment.updated" {
			t.Fatalf("type: %s", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	b.Unsubscribe("shipments", ch)
	// Publishing to a topic with no listeners must not block or panic.
	b.Publish("shipments", SSEEvent{Type: "shipment.updated"})
	b.Publish("shipment:9", SSEEvent{Type: "shipment.updated"})
}

func TestBrokerTopicsAreIsolated(t *testing.T) {
	b := NewBroker()
	all := b.Subscribe("shipments")
	one := b.Subscribe("shipment:5")
	defer b.Unsubscribe("shipments", all)
	defer b.Unsubscribe("shipment:5", one)

	b.Publish("shipment:5", SSEEvent{Type: "shipment.updated", Data: map[string]any{"id": 5}})
	select {
	case <-one:
	case <-time.After(time.Second):
		t.Fatal("row feed missed its event")
	}
	select {
	case evt := <-all:
		t.Fatalf("collection feed received a row event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
