package service

import (
	"context"

	"exchange-support-be/internal/pkg/logger"
	"exchange-support-be/pkg/events"
	pktNats "exchange-support-be/pkg/nats"
)

const inquiryDurableName = "inquiry-dashboard"

// IEventSubscriber is the bus-side surface the notifier needs.
type IEventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

// IInquiryNotifierService feeds the agent dashboard: every inquiry the bot
// opens after repeated clarification failures is pushed into the
// structured log the dashboard tails.
type IInquiryNotifierService interface {
	Start() error
}

type inquiryNotifierService struct {
	subscriber IEventSubscriber
	sysLogger  logger.ILogger
}

func NewInquiryNotifierService(subscriber IEventSubscriber, sysLogger logger.ILogger) IInquiryNotifierService {
	return &inquiryNotifierService{
		subscriber: subscriber,
		sysLogger:  sysLogger,
	}
}

func (s *inquiryNotifierService) Start() error {
	subject := "events." + events.EventInquiryOpened
	return s.subscriber.Subscribe(subject, inquiryDurableName, s.handleInquiryOpened)
}

func (s *inquiryNotifierService) handleInquiryOpened(_ context.Context, event events.Event) error {
	payload := event.Payload()
	s.sysLogger.Info("INQUIRY", "Human hand-off requested", map[string]interface{}{
		"session_id": payload["session_id"],
		"inquiry_id": payload["inquiry_id"],
		"question":   payload["question"],
	})
	return nil
}
