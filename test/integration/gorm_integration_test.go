package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/repository/specification"
	"exchange-support-be/internal/repository/unitofwork"
	"exchange-support-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.KnowledgeArticleRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Knowledge Embedding Repository", func(t *testing.T) {
		count, err := uow.KnowledgeEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("KnowledgeEmbedding count: %d", count)
	})

	t.Run("Session And Message Round Trip", func(t *testing.T) {
		ctx := context.Background()

		session := &entity.ChatSession{
			Title:     "Integration Test Session",
			CreatedAt: time.Now(),
		}
		err := uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", session.Id.String())

		msg := &entity.ChatMessage{
			Chat:          "출금은 어떻게 하나요?",
			Role:          "user",
			ChatSessionId: session.Id,
			CreatedAt:     time.Now(),
		}
		err = uow.ChatMessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		found, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id})
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		// Cleanup
		assert.NoError(t, uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id))
		assert.NoError(t, uow.ChatSessionRepository().Delete(ctx, session.Id))
	})
}
