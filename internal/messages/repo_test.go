package messages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
)

func setupMessagesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL,
  recipient_id TEXT NOT NULL,
  content TEXT NOT NULL,
  read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedMessage(t *testing.T, db *gorm.DB, sender, recipient uuid.UUID, content string, at time.Time) *models.Message {
	t.Helper()
	msg := &models.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func TestRepositoryListConversationChronological(t *testing.T) {
	db := setupMessagesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	seedMessage(t, db, alice, bob, "seconda", base.Add(time.Minute))
	seedMessage(t, db, bob, alice, "prima", base)
	seedMessage(t, db, alice, uuid.New(), "altrui", base)

	thread, err := repo.ListConversation(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "prima", thread[0].Content)
	assert.Equal(t, "seconda", thread[1].Content)
}

func TestRepositoryMarkConversationRead(t *testing.T) {
	db := setupMessagesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	base := time.Now().UTC()

	seedMessage(t, db, bob, alice, "uno", base)
	seedMessage(t, db, bob, alice, "due", base.Add(time.Second))
	mine := seedMessage(t, db, alice, bob, "mio", base.Add(2*time.Second))

	updated, err := repo.MarkConversationRead(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// re-reading is a no-op
	updated, err = repo.MarkConversationRead(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	// own outgoing message stays untouched
	var reloaded models.Message
	require.NoError(t, db.First(&reloaded, "id = ?", mine.ID).Error)
	assert.False(t, reloaded.Read)

	count, err := repo.CountUnread(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
