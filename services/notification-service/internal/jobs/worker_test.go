package jobs

import (
	"strings"
	"testing"
	"time"
)

func TestComposeMessageKinds(t *testing.T) {
	base := Job{
		TemplateData: map[string]any{
			"customer_name": "Dana",
			"date":          "2025-03-10",
			"start":         "10:00",
		},
		RunAt: time.Now(),
	}

	cases := []struct {
		kind        string
		wantSubject string
		wantInBody  string
	}{
		{KindConfirmation, "booked", "is confirmed"},
		{KindCancellation, "cancelled", "has been cancelled"},
		{KindReminder, "Reminder", "reminder about your appointment"},
	}
	for _, tc := range cases {
		job := base
		job.Kind = tc.kind
		subject, body := composeMessage(job)
		if !strings.Contains(subject, tc.wantSubject) {
			t.Fatalf("kind %s subject = %q", tc.kind, subject)
		}
		if !strings.Contains(body, tc.wantInBody) {
			t.Fatalf("kind %s body = %q", tc.kind, body)
		}
		if !strings.Contains(body, "Dana") || !strings.Contains(body, "2025-03-10") || !strings.Contains(body, "10:00") {
			t.Fatalf("kind %s body missing template data: %q", tc.kind, body)
		}
	}
}

func TestComposeMessageMissingName(t *testing.T) {
	_, body := composeMessage(Job{Kind: KindReminder, TemplateData: map[string]any{}})
	if !strings.Contains(body, "Hi there") {
		t.Fatalf("expected a fallback greeting, got %q", body)
	}
}
