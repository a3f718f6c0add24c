package models

// Post is a top-level contribution to a thread. Content holds the Markdown source as
// submitted; rendering happens on read.
type Post struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ThreadID  uint    `gorm:"not null;index:idx_posts_thread_id" json:"thread_id"`
	Author    string  `gorm:"size:32" json:"author"`
	Content   string  `gorm:"type:text;not null" json:"content"`
	CreatedAt int64   `gorm:"not null" json:"created_at"`
	Thread    *Thread `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"thread,omitempty"`
}
