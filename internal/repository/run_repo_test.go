package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mcqgen/mcq-generator/internal/database"
	"github.com/mcqgen/mcq-generator/internal/models"
)

func setupRunTestDB(t *testing.T) (*gorm.DB, func()) {
	// Use in-memory SQLite database for testing
	dbName := fmt.Sprintf("file:memdb_run_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	// Run migrations
	err = db.AutoMigrate(&models.GenerationRun{})
	require.NoError(t, err, "Failed to run migrations")

	// Save original DB reference
	originalDB := database.DB

	// Replace global DB with test DB
	database.DB = db

	// Return cleanup function
	cleanup := func() {
		database.DB = originalDB
	}

	return db, cleanup
}

func newTestRun() *models.GenerationRun {
	return &models.GenerationRun{
		SourceFile: "radiology.pdf",
		StartPage:  3,
		EndPage:    7,
		OutputPath: "output/questions.docx",
		ChunkCount: 4,
	}
}

func TestRunRepository_Create(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository()

	run := newTestRun()
	err := repo.Create(run)
	assert.NoError(t, err, "Run creation should succeed")
	assert.NotEmpty(t, run.ID, "ID should be assigned on creation")

	saved, err := repo.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "radiology.pdf", saved.SourceFile)
	assert.Equal(t, models.RunStatusRunning, saved.Status)
	assert.False(t, saved.StartedAt.IsZero(), "StartedAt should be set by hook")
}

func TestRunRepository_GetNotFound(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository()

	_, err := repo.Get("missing-id")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunRepository_List(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository()

	for i := 0; i < 3; i++ {
		run := newTestRun()
		run.StartedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(run))
	}

	runs, total, err := repo.List(0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, runs, 3)

	// Most recent first
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt) || runs[0].StartedAt.Equal(runs[1].StartedAt))

	// Pagination
	page, total, err := repo.List(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}

func TestRunRepository_Complete(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository()

	run := newTestRun()
	require.NoError(t, repo.Create(run))

	tallies := map[int]int{1: 4, 4: 3, 6: 2}
	err := repo.Complete(run.ID, 9, 3, tallies)
	require.NoError(t, err)

	saved, err := repo.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, saved.Status)
	assert.NotNil(t, saved.CompletedAt)
	assert.Equal(t, 9, saved.QuestionCount)
	assert.Equal(t, 3, saved.SkippedCount)

	var savedTallies map[string]int
	require.NoError(t, json.Unmarshal(saved.TypeTallies, &savedTallies))
	assert.Equal(t, 4, savedTallies["1"])
	assert.Equal(t, 2, savedTallies["6"])
}

func TestRunRepository_Fail(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository()

	run := newTestRun()
	require.NoError(t, repo.Create(run))

	err := repo.Fail(run.ID, fmt.Errorf("page range 3-7 exceeds document length"))
	require.NoError(t, err)

	saved, err := repo.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, saved.Status)
	assert.NotNil(t, saved.CompletedAt)
	assert.Contains(t, saved.Error, "exceeds document length")
}

func TestRunRepository_WithContext(t *testing.T) {
	_, cleanup := setupRunTestDB(t)
	defer cleanup()

	repo := NewRunRepository().WithContext(context.Background())

	run := newTestRun()
	require.NoError(t, repo.Create(run))

	_, err := repo.Get(run.ID)
	assert.NoError(t, err)
}
