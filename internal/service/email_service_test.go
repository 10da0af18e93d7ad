package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caregame/internal/analytics"
	"caregame/internal/models"
)

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if svc.IsEnabled() {
		t.Error("service should be disabled without a sender")
	}

	report := BuildReport("maya", nil, SessionSet{}, analytics.DefaultNorms)
	if err := svc.SendReport(context.Background(), "parent@example.com", report); err != nil {
		t.Errorf("disabled send should be a no-op, got %v", err)
	}
}

func TestEmailServiceSendReport(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, "reports@example.com", "Care Game", false)

	profile := &models.ChildProfile{Name: "<maya>", Age: 4}
	set := SessionSet{Sessions: MergeSessions("<maya>", nil, append(sampleSessions(), symbolSession()), LocalFirst)}
	report := BuildReport("<maya>", profile, set, analytics.DefaultNorms)

	if err := svc.SendReport(context.Background(), "parent@example.com", report); err != nil {
		t.Fatalf("SendReport() error = %v", err)
	}
	if len(ses.inputs) != 1 {
		t.Fatalf("expected 1 email, got %d", len(ses.inputs))
	}

	in := ses.inputs[0]
	if *in.FromEmailAddress != "Care Game <reports@example.com>" {
		t.Errorf("From = %q", *in.FromEmailAddress)
	}
	if in.Destination.ToAddresses[0] != "parent@example.com" {
		t.Errorf("To = %v", in.Destination.ToAddresses)
	}

	text := *in.Content.Simple.Body.Text.Data
	for _, want := range []string{"Total plays: 6", "Average score: 4.8", "Emotion Detector: 2 attempts", "ADHD screening summary", "Age: 4"} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q:\n%s", want, text)
		}
	}

	html := *in.Content.Simple.Body.Html.Data
	if strings.Contains(html, "<maya>") || !strings.Contains(html, "&lt;maya&gt;") {
		t.Error("child name should be escaped in the HTML body")
	}
}

func TestEmailServiceSendFailure(t *testing.T) {
	svc := newEmailService(&fakeSES{err: errStoreDown}, "reports@example.com", "", false)
	report := BuildReport("maya", nil, SessionSet{}, analytics.DefaultNorms)

	if err := svc.SendReport(context.Background(), "parent@example.com", report); !errors.Is(err, errStoreDown) {
		t.Errorf("expected the SES error to be wrapped, got %v", err)
	}
}
