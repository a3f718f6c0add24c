package config

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/minibbs/models"
)

const threadsCategoryIndex = "idx_threads_category"

// schemaIndexes are ensured on every run, so databases created by older versions
// pick them up too.
var schemaIndexes = []struct {
	model interface{}
	name  string
}{
	{&models.Thread{}, "idx_threads_last_activity"},
	{&models.Thread{}, threadsCategoryIndex},
	{&models.Post{}, "idx_posts_thread_id"},
	{&models.Comment{}, "idx_comments_post_id"},
}

// schemaModels lists tables in dependency order so foreign keys always have a target.
var schemaModels = []interface{}{
	&models.Category{},
	&models.Thread{},
	&models.Post{},
	&models.Comment{},
}

// EnsureSchema creates missing tables, applies additive migrations, seeds the default
// categories and backfills threads without a category. It is idempotent and runs in a
// single transaction: on error nothing is kept and the next startup retries.
func EnsureSchema(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		m := tx.Migrator()

		for _, model := range schemaModels {
			// Existing tables are never rebuilt; only missing columns are added below
			if m.HasTable(model) {
				continue
			}
			if err := m.CreateTable(model); err != nil {
				return fmt.Errorf("create table for %T: %w", model, err)
			}
		}

		if !m.HasColumn(&models.Thread{}, "CategoryID") {
			if err := m.AddColumn(&models.Thread{}, "CategoryID"); err != nil {
				return fmt.Errorf("add threads.category_id: %w", err)
			}
		}
		for _, idx := range schemaIndexes {
			if m.HasIndex(idx.model, idx.name) {
				continue
			}
			if err := m.CreateIndex(idx.model, idx.name); err != nil {
				return fmt.Errorf("create %s: %w", idx.name, err)
			}
		}

		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count == 0 {
			defaults := models.DefaultCategories()
			if err := tx.Create(&defaults).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}

		var first models.Category
		if err := tx.Order("id ASC").Limit(1).Find(&first).Error; err != nil {
			return fmt.Errorf("load default category: %w", err)
		}
		if first.ID == 0 {
			return nil
		}
		if err := tx.Model(&models.Thread{}).
			Where("category_id IS NULL").
			Update("category_id", first.ID).Error; err != nil {
			return fmt.Errorf("backfill threads.category_id: %w", err)
		}
		return nil
	})
}
