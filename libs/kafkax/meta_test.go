package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestExtractEventMetaFromHeaders(t *testing.T) {
	msg := kafka.Message{
		Topic: "booking.appointment.booked.v1",
		Key:   []byte("appt-1"),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte("evt-42")},
			{Key: "event_type", Value: []byte("booking.appointment.booked.v1")},
		},
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "evt-42" {
		t.Fatalf("EventID = %q", meta.EventID)
	}
	if meta.EventType != "booking.appointment.booked.v1" {
		t.Fatalf("EventType = %q", meta.EventType)
	}
}

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	msg := kafka.Message{
		Topic: "payments.payment.succeeded.v1",
		Key:   []byte("appt-7"),
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "appt-7" {
		t.Fatalf("EventID = %q, want message key", meta.EventID)
	}
	if meta.EventType != "payments.payment.succeeded.v1" {
		t.Fatalf("EventType = %q, want topic", meta.EventType)
	}
}

func TestSplitBrokers(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{" , ", 0},
		{"kafka:9092", 1},
		{"kafka-1:9092, kafka-2:9092", 2},
	}
	for _, tc := range cases {
		if got := SplitBrokers(tc.in); len(got) != tc.want {
			t.Fatalf("SplitBrokers(%q) = %v, want %d entries", tc.in, got, tc.want)
		}
	}
}

func TestHeaderCarrierSetOverwrites(t *testing.T) {
	c := &headerCarrier{headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}
	c.Set("traceparent", "new")
	if got := c.Get("traceparent"); got != "new" {
		t.Fatalf("Get = %q, want new", got)
	}
	if len(c.headers) != 1 {
		t.Fatalf("expected overwrite, got %d headers", len(c.headers))
	}
	c.Set("tracestate", "vendor=1")
	if len(c.headers) != 2 {
		t.Fatalf("expected append, got %d headers", len(c.headers))
	}
}
