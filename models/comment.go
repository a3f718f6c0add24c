package models

// Comment represents a reply to a post.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;index:idx_comments_post_id" json:"post_id"`
	Author    string `gorm:"size:32" json:"author"`
	Content   string `gorm:"type:text;not null" json:"content"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	Post      *Post  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
