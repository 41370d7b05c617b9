package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "tablecheck/internal/db"
	"tablecheck/internal/domain"
)

func setupDatasetRepo(t *testing.T) *DatasetRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewDatasetRepo(writeDB)
}

func makeDataset(id, filename string) *domain.Dataset {
	return &domain.Dataset{
		ID:               id,
		OriginalFilename: filename,
		FileType:         domain.FileTypeCSV,
		Delimiter:        ",",
		SizeBytes:        1234,
		ContentType:      "text/csv",
		StorageKey:       id + "/raw.csv",
		UploadedAt:       time.Now().UTC(),
	}
}

func TestDatasetRepo_InsertAndGet(t *testing.T) {
	repo := setupDatasetRepo(t)
	ctx := context.Background()

	ds := makeDataset("dataset_abc", "sales.csv")
	require.NoError(t, repo.Insert(ctx, ds))

	got, err := repo.Get(ctx, "dataset_abc")
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", got.OriginalFilename)
	assert.Equal(t, domain.FileTypeCSV, got.FileType)
	assert.Equal(t, ",", got.Delimiter)
	assert.Nil(t, got.RowCount)
	assert.Nil(t, got.AnalyzedAt)
}

func TestDatasetRepo_GetMissing(t *testing.T) {
	repo := setupDatasetRepo(t)

	_, err := repo.Get(context.Background(), "dataset_nope")
	require.Error(t, err)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDatasetRepo_ListPaginates(t *testing.T) {
	repo := setupDatasetRepo(t)
	ctx := context.Background()

	for _, id := range []string{"dataset_a", "dataset_b", "dataset_c"} {
		require.NoError(t, repo.Insert(ctx, makeDataset(id, id+".csv")))
	}

	page, total, err := repo.List(ctx, domain.PageRequest{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	rest, _, err := repo.List(ctx, domain.PageRequest{
		MaxResults: 2,
		PageToken:  domain.EncodePageToken(2),
	})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestDatasetRepo_SetShapeAndMarkAnalyzed(t *testing.T) {
	repo := setupDatasetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeDataset("dataset_s", "s.csv")))
	require.NoError(t, repo.SetShape(ctx, "dataset_s", 500, 23))
	require.NoError(t, repo.MarkAnalyzed(ctx, "dataset_s", time.Now().UTC()))

	got, err := repo.Get(ctx, "dataset_s")
	require.NoError(t, err)
	require.NotNil(t, got.RowCount)
	assert.Equal(t, int64(500), *got.RowCount)
	require.NotNil(t, got.ColumnCount)
	assert.Equal(t, int64(23), *got.ColumnCount)
	assert.NotNil(t, got.AnalyzedAt)
}

func TestDatasetRepo_Delete(t *testing.T) {
	repo := setupDatasetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeDataset("dataset_d", "d.csv")))
	require.NoError(t, repo.Delete(ctx, "dataset_d"))

	err := repo.Delete(ctx, "dataset_d")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDatasetRepo_ListOlderThan(t *testing.T) {
	repo := setupDatasetRepo(t)
	ctx := context.Background()

	old := makeDataset("dataset_old", "old.csv")
	old.UploadedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, makeDataset("dataset_new", "new.csv")))

	stale, err := repo.ListOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "dataset_old", stale[0].ID)
}
