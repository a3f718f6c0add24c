package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/minibbs/models"
)

func categorySlugs(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var slugs []string
	require.NoError(t, db.Model(&models.Category{}).Order("id ASC").Pluck("slug", &slugs).Error)
	return slugs
}

func TestEnsureSchemaCreatesAndSeeds(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, EnsureSchema(db))

	m := db.Migrator()
	for _, model := range schemaModels {
		assert.True(t, m.HasTable(model), "%T", model)
	}
	for _, idx := range schemaIndexes {
		assert.True(t, m.HasIndex(idx.model, idx.name), idx.name)
	}

	assert.Equal(t, []string{"technology", "learning", "politics", "secret"}, categorySlugs(t, db))
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, EnsureSchema(db))
	before := categorySlugs(t, db)

	require.NoError(t, EnsureSchema(db))
	require.NoError(t, EnsureSchema(db))
	assert.Equal(t, before, categorySlugs(t, db))
}

func TestEnsureSchemaNeverReseeds(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, EnsureSchema(db))
	require.NoError(t, db.Where("slug <> ?", "learning").Delete(&models.Category{}).Error)

	require.NoError(t, EnsureSchema(db))
	assert.Equal(t, []string{"learning"}, categorySlugs(t, db))
}

func TestEnsureSchemaMigratesLegacyThreads(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE threads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		posts_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_activity_at INTEGER NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO threads (title, posts_count, created_at, last_activity_at)
		VALUES ('old one', 1, 100, 100), ('old two', 1, 200, 200)`).Error)

	require.NoError(t, EnsureSchema(db))
	require.True(t, db.Migrator().HasColumn(&models.Thread{}, "CategoryID"))
	assert.True(t, db.Migrator().HasIndex(&models.Thread{}, threadsCategoryIndex))
	assert.True(t, db.Migrator().HasIndex(&models.Thread{}, "idx_threads_last_activity"))

	var first models.Category
	require.NoError(t, db.Order("id ASC").First(&first).Error)

	var threads []models.Thread
	require.NoError(t, db.Order("id ASC").Find(&threads).Error)
	require.Len(t, threads, 2)
	for _, th := range threads {
		require.NotNil(t, th.CategoryID)
		assert.Equal(t, first.ID, *th.CategoryID)
	}

	// a second run finds the column and leaves everything as is
	require.NoError(t, EnsureSchema(db))
}

func TestEnsureSchemaBackfillsOrphanedThreads(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, EnsureSchema(db))

	var cats []models.Category
	require.NoError(t, db.Order("id ASC").Find(&cats).Error)
	thread := models.Thread{Title: "t", PostsCount: 0, CreatedAt: 1, LastActivityAt: 1, CategoryID: &cats[0].ID}
	require.NoError(t, db.Create(&thread).Error)

	// ON DELETE SET NULL clears the thread's category
	require.NoError(t, db.Delete(&cats[0]).Error)
	var orphan models.Thread
	require.NoError(t, db.First(&orphan, thread.ID).Error)
	require.Nil(t, orphan.CategoryID)

	require.NoError(t, EnsureSchema(db))
	require.NoError(t, db.First(&orphan, thread.ID).Error)
	require.NotNil(t, orphan.CategoryID)
	assert.Equal(t, cats[1].ID, *orphan.CategoryID)
}
