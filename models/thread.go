package models

// Thread is a discussion topic. PostsCount and LastActivityAt are maintained by the
// store's write path whenever a post or comment is inserted under the thread.
type Thread struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:140;not null" json:"title"`
	PostsCount     int       `gorm:"not null;default:0" json:"posts_count"`
	CreatedAt      int64     `gorm:"not null" json:"created_at"`
	LastActivityAt int64     `gorm:"not null;index:idx_threads_last_activity,sort:desc" json:"last_activity_at"`
	CategoryID     *uint     `gorm:"index:idx_threads_category" json:"category_id"`
	Category       *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}
