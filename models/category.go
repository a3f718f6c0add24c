package models

// Category is a fixed topical grouping. Rows are created by the schema seed only.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Name string `gorm:"size:64;not null" json:"name"`
}

// DefaultCategories is the seed set inserted into an empty categories table.
func DefaultCategories() []Category {
	return []Category{
		{Slug: "technology", Name: "Technology"},
		{Slug: "learning", Name: "Learning"},
		{Slug: "politics", Name: "Politics"},
		{Slug: "secret", Name: "Secret"},
	}
}
