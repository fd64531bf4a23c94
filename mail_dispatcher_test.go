package otpgate

import (
	"errors"
	"testing"
)

func TestMailDispatcherReportsDeliveryFailure(t *testing.T) {
	sink := NewChannelSink(8)
	audit := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	metrics := newMetrics(MetricsConfig{Enabled: true})
	mailer := &recordingMailer{fail: errors.New("smtp down")}

	dispatcher := newMailDispatcher(testConfig().Mail, mailer, audit, metrics)
	dispatcher.Enqueue(mailJob{
		To:       "u@example.com",
		Subject:  "Verify your email",
		Template: "user-activation-mail",
		Data:     map[string]string{"otp": "4821"},
	})
	dispatcher.Close()
	audit.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventMailFailed {
			t.Fatalf("expected delivery-failure event, got %q", event.EventType)
		}
		if event.Identity != "u@example.com" || event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("delivery failure never reached the sink")
	}

	if got := metrics.Snapshot().Counters[MetricMailDeliveryFailure]; got != 1 {
		t.Fatalf("expected 1 delivery failure counted, got %d", got)
	}
}

func TestMailDispatcherWithoutMailer(t *testing.T) {
	dispatcher := newMailDispatcher(testConfig().Mail, nil, nil, nil)
	if dispatcher != nil {
		t.Fatal("no mailer must yield a nil dispatcher")
	}

	dispatcher.Enqueue(mailJob{To: "u@example.com"})
	dispatcher.Close()
	if got := dispatcher.Dropped(); got != 0 {
		t.Fatalf("expected 0 dropped, got %d", got)
	}
}

func TestMailDispatcherDrainsOnClose(t *testing.T) {
	mailer := &recordingMailer{}
	dispatcher := newMailDispatcher(testConfig().Mail, mailer, nil, nil)

	for i := 0; i < 5; i++ {
		dispatcher.Enqueue(mailJob{To: "u@example.com", Template: "user-activation-mail"})
	}
	dispatcher.Close()

	if got := len(mailer.messages()); got != 5 {
		t.Fatalf("expected 5 deliveries after drain, got %d", got)
	}
}
