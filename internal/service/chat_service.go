package service

import (
	"context"
	"log"
	"time"

	"exchange-support-be/internal/constant"
	"exchange-support-be/internal/dto"
	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/memory"
	"exchange-support-be/internal/repository/specification"
	"exchange-support-be/internal/repository/unitofwork"
	"exchange-support-be/pkg/botkit/orchestrator"
	"exchange-support-be/pkg/events"
	pktNats "exchange-support-be/pkg/nats"
	"exchange-support-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// historyWindow is how many persisted messages seed a turn's context.
const historyWindow = 20

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory          unitofwork.RepositoryFactory
	bot                 *orchestrator.Orchestrator
	history             *memory.HistoryRepository
	eventPublisher      *pktNats.Publisher
	clarificationBudget int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	bot *orchestrator.Orchestrator,
	history *memory.HistoryRepository,
	eventPublisher *pktNats.Publisher,
	clarificationBudget int,
) IChatService {
	if clarificationBudget <= 0 {
		clarificationBudget = 2
	}
	return &chatService{
		uowFactory:          uowFactory,
		bot:                 bot,
		history:             history,
		eventPublisher:      eventPublisher,
		clarificationBudget: clarificationBudget,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Title:     constant.DefaultSessionTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		res[i] = &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return res, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		res[i] = &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Routing:   routingDTO(msg.Routing),
			CreatedAt: msg.CreatedAt,
		}
	}
	return res, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	s.history.Delete(sessionId.String())
	return nil
}

func (s *chatService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}

	turns, err := s.loadHistory(ctx, uow, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	state := store.ConversationState{
		SessionID: req.ChatSessionId.String(),
		Messages:  append(turns, store.ChatTurn{Role: store.RoleUser, Text: req.Chat}),
	}

	// Persist the user message before running the bot so a crash mid-turn
	// never loses what the user typed.
	sent := &entity.ChatMessage{
		Chat:          req.Chat,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: req.ChatSessionId,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, sent); err != nil {
		return nil, err
	}
	s.history.Append(req.ChatSessionId.String(), store.ChatTurn{Role: store.RoleUser, Text: req.Chat})

	out := s.bot.HandleTurn(ctx, state)
	replyText := out.Messages[len(out.Messages)-1].Text

	routing := &entity.RoutingMetadata{
		QuestionType:    string(out.QuestionType),
		SpecialistUsed:  out.SpecialistUsed,
		SearchLoopCount: out.SearchLoopCount,
		RefinementCount: out.RefinementCount,
	}
	if out.GraderScore != nil {
		routing.GraderScore = *out.GraderScore
	}

	reply := &entity.ChatMessage{
		Chat:          replyText,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: req.ChatSessionId,
		Routing:       routing,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, reply); err != nil {
		return nil, err
	}

	if out.NeedsClarification {
		s.maybeOpenInquiry(ctx, uow, req.ChatSessionId, req.Chat)
	}

	s.publishAnswered(ctx, out)

	return &dto.SendChatResponse{
		ChatSessionId: req.ChatSessionId,
		Sent: &dto.SendChatResponseChat{
			Id:        sent.Id,
			Chat:      sent.Chat,
			Role:      sent.Role,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        reply.Id,
			Chat:      reply.Chat,
			Role:      reply.Role,
			CreatedAt: reply.CreatedAt,
		},
		Routing: routingDTO(routing),
	}, nil
}

// loadHistory prefers the in-memory cache and falls back to the DB for
// sessions that went cold.
func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]store.ChatTurn, error) {
	if turns, found := s.history.Get(sessionId.String()); found {
		return turns, nil
	}

	messages, err := uow.ChatMessageRepository().FindRecentBySessionId(ctx, sessionId, historyWindow)
	if err != nil {
		return nil, err
	}

	turns := make([]store.ChatTurn, len(messages))
	for i, msg := range messages {
		turns[i] = store.ChatTurn{Role: msg.Role, Text: msg.Chat}
	}
	s.history.Set(sessionId.String(), turns)
	return turns, nil
}

// maybeOpenInquiry opens a human-handoff ticket once the bot has asked
// for clarification too many times in a row.
func (s *chatService) maybeOpenInquiry(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, question string) {
	messages, err := uow.ChatMessageRepository().FindRecentBySessionId(ctx, sessionId, historyWindow)
	if err != nil {
		log.Printf("[CHAT] Failed to load messages for inquiry check: %v", err)
		return
	}

	consecutive := 0
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != constant.ChatMessageRoleAssistant {
			continue
		}
		if msg.Routing == nil || msg.Routing.QuestionType != string(store.QuestionIntentClarification) {
			break
		}
		consecutive++
	}
	if consecutive < s.clarificationBudget {
		return
	}

	// Skip when this session already has an open inquiry.
	count, err := uow.InquiryRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ByInquiryStatus{Status: entity.InquiryStatusOpen})
	if err != nil || count > 0 {
		return
	}

	inquiry := &entity.Inquiry{
		ChatSessionId: sessionId,
		Question:      question,
		Status:        entity.InquiryStatusOpen,
		CreatedAt:     time.Now(),
	}
	if err := uow.InquiryRepository().Create(ctx, inquiry); err != nil {
		log.Printf("[CHAT] Failed to open inquiry: %v", err)
		return
	}

	log.Printf("[CHAT] Opened inquiry %s for session %s after %d clarifications",
		inquiry.Id, sessionId, consecutive)

	if s.eventPublisher != nil {
		evt := events.NewInquiryOpened(sessionId.String(), inquiry.Id.String(), question)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[CHAT] Failed to publish inquiry event: %v", err)
		}
	}
}

func (s *chatService) publishAnswered(ctx context.Context, out store.ConversationState) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewChatAnswered(out.SessionID, string(out.QuestionType), out.SpecialistUsed, out.SearchLoopCount)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[CHAT] Failed to publish answered event: %v", err)
	}
}

func routingDTO(r *entity.RoutingMetadata) *dto.RoutingDTO {
	if r == nil {
		return nil
	}
	return &dto.RoutingDTO{
		QuestionType:    r.QuestionType,
		SpecialistUsed:  r.SpecialistUsed,
		SearchLoopCount: r.SearchLoopCount,
		GraderScore:     r.GraderScore,
	}
}
