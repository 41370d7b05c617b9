package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "tablecheck/internal/db"
	"tablecheck/internal/domain"
)

func setupChatRepo(t *testing.T) *ChatRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewChatRepo(writeDB)
}

func appendTurn(t *testing.T, repo *ChatRepo, session string, role domain.ChatRole, content string) {
	t.Helper()
	require.NoError(t, repo.Append(context.Background(), &domain.ChatMessage{
		SessionID: session,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestChatRepo_HistoryOrder(t *testing.T) {
	repo := setupChatRepo(t)

	appendTurn(t, repo, "s1", domain.ChatRoleUser, "what is wrong with my data?")
	appendTurn(t, repo, "s1", domain.ChatRoleAssistant, "there are 3 duplicate rows")
	appendTurn(t, repo, "s2", domain.ChatRoleUser, "unrelated session")

	msgs, total, err := repo.History(context.Background(), "s1", domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.ChatRoleUser, msgs[0].Role)
	assert.Equal(t, domain.ChatRoleAssistant, msgs[1].Role)
}

func TestChatRepo_RecentKeepsTail(t *testing.T) {
	repo := setupChatRepo(t)

	for i := 0; i < 10; i++ {
		appendTurn(t, repo, "s1", domain.ChatRoleUser, fmt.Sprintf("message %d", i))
	}

	recent, err := repo.Recent(context.Background(), "s1", 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	// Chronological order, ending with the newest turn.
	assert.Equal(t, "message 6", recent[0].Content)
	assert.Equal(t, "message 9", recent[3].Content)
}

func TestChatRepo_DatasetIDRoundTrip(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewChatRepo(writeDB)
	datasets := NewDatasetRepo(writeDB)
	ctx := context.Background()

	ds := makeDataset("dataset_x", "sales.csv")
	require.NoError(t, datasets.Insert(ctx, ds))
	require.NoError(t, repo.Append(ctx, &domain.ChatMessage{
		SessionID: "s1",
		Role:      domain.ChatRoleUser,
		Content:   "about this dataset",
		DatasetID: &ds.ID,
		CreatedAt: time.Now().UTC(),
	}))

	msgs, _, err := repo.History(ctx, "s1", domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].DatasetID)
	assert.Equal(t, "dataset_x", *msgs[0].DatasetID)
}

func TestChatRepo_DatasetDeleteClearsReference(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewChatRepo(writeDB)
	datasets := NewDatasetRepo(writeDB)
	ctx := context.Background()

	ds := makeDataset("dataset_gone", "sales.csv")
	require.NoError(t, datasets.Insert(ctx, ds))
	require.NoError(t, repo.Append(ctx, &domain.ChatMessage{
		SessionID: "s1",
		Role:      domain.ChatRoleUser,
		Content:   "about this dataset",
		DatasetID: &ds.ID,
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, datasets.Delete(ctx, ds.ID))

	// The turn survives the dataset, with the reference cleared.
	msgs, _, err := repo.History(ctx, "s1", domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].DatasetID)
}
