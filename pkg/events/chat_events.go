package events

import "time"

const (
	EventChatAnswered  = "CHAT_ANSWERED"
	EventInquiryOpened = "INQUIRY_OPENED"
)

// NewChatAnswered is emitted after the bot replies to a user turn.
func NewChatAnswered(sessionID, questionType, specialist string, loopCount int) Event {
	return BaseEvent{
		Type: EventChatAnswered,
		Data: map[string]interface{}{
			"session_id":        sessionID,
			"question_type":     questionType,
			"specialist_used":   specialist,
			"search_loop_count": loopCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewInquiryOpened is emitted when repeated clarification failures hand
// the conversation off to a human agent.
func NewInquiryOpened(sessionID, inquiryID, question string) Event {
	return BaseEvent{
		Type: EventInquiryOpened,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"inquiry_id": inquiryID,
			"question":   question,
		},
		OccurredAt: time.Now(),
	}
}
