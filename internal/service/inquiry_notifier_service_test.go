package service

import (
	"context"
	"testing"
	"time"

	"exchange-support-be/pkg/events"
	pktNats "exchange-support-be/pkg/nats"
)

type fakeSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (f *fakeSubscriber) Subscribe(subject string, durableName string, handler pktNats.EventHandler) error {
	f.subject = subject
	f.durable = durableName
	f.handler = handler
	return nil
}

type fakeLogger struct {
	infos []map[string]interface{}
}

func (f *fakeLogger) Debug(_, _ string, _ map[string]interface{}) {}
func (f *fakeLogger) Info(_, _ string, details map[string]interface{}) {
	f.infos = append(f.infos, details)
}
func (f *fakeLogger) Warn(_, _ string, _ map[string]interface{})  {}
func (f *fakeLogger) Error(_, _ string, _ map[string]interface{}) {}
func (f *fakeLogger) Sync() error                                 { return nil }

func TestInquiryNotifierSubscribesToOpenedInquiries(t *testing.T) {
	sub := &fakeSubscriber{}
	logs := &fakeLogger{}
	notifier := NewInquiryNotifierService(sub, logs)

	if err := notifier.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sub.subject != "events."+events.EventInquiryOpened {
		t.Errorf("subject = %q", sub.subject)
	}
	if sub.durable != inquiryDurableName {
		t.Errorf("durable = %q", sub.durable)
	}

	evt := events.BaseEvent{
		Type: events.EventInquiryOpened,
		Data: map[string]interface{}{
			"session_id": "s-1",
			"inquiry_id": "i-9",
			"question":   "출금이 안 돼요",
		},
		OccurredAt: time.Now(),
	}
	if err := sub.handler(context.Background(), evt); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if len(logs.infos) != 1 {
		t.Fatalf("info logs = %d, want 1", len(logs.infos))
	}
	got := logs.infos[0]
	if got["session_id"] != "s-1" || got["inquiry_id"] != "i-9" || got["question"] != "출금이 안 돼요" {
		t.Errorf("logged details = %v", got)
	}
}
