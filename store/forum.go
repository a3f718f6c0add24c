package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/minibbs/models"
	"github.com/cppla/minibbs/utils"
)

var (
	// ErrValidation marks a missing required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a mutation whose parent thread or post does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoCategory means the categories table is empty; an operator has to reseed it.
	ErrNoCategory = errors.New("no categories configured")
)

// ForumStore is the only write path for threads, posts and comments. It keeps
// Thread.PostsCount and Thread.LastActivityAt consistent with the child rows.
type ForumStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewForumStore wraps an open database whose schema has been ensured.
func NewForumStore(db *gorm.DB) *ForumStore {
	return &ForumStore{db: db, now: time.Now}
}

// SetClock replaces the time source used for created_at and last_activity_at.
func (s *ForumStore) SetClock(now func() time.Time) {
	s.now = now
}

// NewThread is the input of CreateThread. CategoryID is optional.
type NewThread struct {
	Title      string
	Author     string
	Content    string
	CategoryID *uint
}

// ThreadPage is one page of the thread index. Category is set when the listing was
// filtered by a known category.
type ThreadPage struct {
	Pagination
	Threads  []models.Thread  `json:"items"`
	Category *models.Category `json:"category,omitempty"`
}

// PostPage is one page of posts of a thread.
type PostPage struct {
	Pagination
	Posts []models.Post `json:"items"`
}

// Stats holds row counts for the board.
type Stats struct {
	Threads  int64 `json:"thread_count"`
	Posts    int64 `json:"post_count"`
	Comments int64 `json:"comment_count"`
}

// ListCategories returns all categories ordered by name.
func (s *ForumStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// ListThreads returns threads by most recent activity. An unknown categorySlug lists
// all threads.
func (s *ForumStore) ListThreads(ctx context.Context, categorySlug string, page, pageSize int) (*ThreadPage, error) {
	db := s.db.WithContext(ctx)
	result := &ThreadPage{Threads: []models.Thread{}}

	if categorySlug != "" {
		var cat models.Category
		if err := db.Where("slug = ?", categorySlug).Limit(1).Find(&cat).Error; err != nil {
			return nil, err
		}
		if cat.ID != 0 {
			result.Category = &cat
		}
	}
	scoped := func() *gorm.DB {
		q := db.Model(&models.Thread{})
		if result.Category != nil {
			q = q.Where("threads.category_id = ?", result.Category.ID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, err
	}
	result.Pagination = newPagination(page, pageSize, total)

	if err := scoped().
		Joins("Category").
		Order("threads.last_activity_at DESC").
		Order("threads.id DESC").
		Offset(result.offset()).
		Limit(result.PageSize).
		Find(&result.Threads).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetThread loads a thread with its category.
func (s *ForumStore) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	err := s.db.WithContext(ctx).Joins("Category").Where("threads.id = ?", id).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: thread %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListPosts returns one page of a thread's posts in creation order.
func (s *ForumStore) ListPosts(ctx context.Context, threadID uint, page, pageSize int) (*PostPage, error) {
	db := s.db.WithContext(ctx)
	result := &PostPage{Posts: []models.Post{}}

	var total int64
	if err := db.Model(&models.Post{}).Where("thread_id = ?", threadID).Count(&total).Error; err != nil {
		return nil, err
	}
	result.Pagination = newPagination(page, pageSize, total)

	if err := db.Where("thread_id = ?", threadID).
		Order("id ASC").
		Offset(result.offset()).
		Limit(result.PageSize).
		Find(&result.Posts).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ListCommentsForPosts fetches the comments of all given posts in one query and groups
// them by post id, each group in creation order.
func (s *ForumStore) ListCommentsForPosts(ctx context.Context, postIDs []uint) (map[uint][]models.Comment, error) {
	grouped := make(map[uint][]models.Comment)
	ids := utils.UniqueUint(postIDs)
	if len(ids) == 0 {
		return grouped, nil
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		grouped[c.PostID] = append(grouped[c.PostID], c)
	}
	return grouped, nil
}

// ListRecentPosts returns the newest posts across the board with their thread and
// category.
func (s *ForumStore) ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if limit <= 0 {
		return posts, nil
	}
	if err := s.db.WithContext(ctx).
		Preload("Thread.Category").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateThread inserts a thread together with its first post. The category falls back
// to the lowest-id category when in.CategoryID is nil or unknown.
func (s *ForumStore) CreateThread(ctx context.Context, in NewThread) (*models.Thread, error) {
	title := utils.NormalizeField(in.Title, utils.MaxTitleLen)
	content := utils.NormalizeField(in.Content, utils.MaxPostLen)
	author := utils.NormalizeAuthor(in.Author)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	var thread models.Thread
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := resolveCategory(tx, in.CategoryID)
		if err != nil {
			return err
		}

		ts := s.now().Unix()
		thread = models.Thread{
			Title:          title,
			PostsCount:     1,
			CreatedAt:      ts,
			LastActivityAt: ts,
			CategoryID:     &cat.ID,
		}
		if err := tx.Create(&thread).Error; err != nil {
			return err
		}
		post := models.Post{ThreadID: thread.ID, Author: author, Content: content, CreatedAt: ts}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		thread.Category = cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// AddReply appends a post to an existing thread.
func (s *ForumStore) AddReply(ctx context.Context, threadID uint, author, content string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread models.Thread
		if err := tx.Select("id").First(&thread, threadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: thread %d", ErrNotFound, threadID)
			}
			return err
		}

		body := utils.NormalizeField(content, utils.MaxPostLen)
		if body == "" {
			return fmt.Errorf("%w: content is required", ErrValidation)
		}

		ts := s.now().Unix()
		post = models.Post{ThreadID: thread.ID, Author: utils.NormalizeAuthor(author), Content: body, CreatedAt: ts}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return bumpThread(tx, thread.ID, ts, true)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// AddComment attaches a comment to a post and bumps the post's thread. The returned
// comment carries its parent post (id and thread id only).
func (s *ForumStore) AddComment(ctx context.Context, postID uint, author, content string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "thread_id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", ErrNotFound, postID)
			}
			return err
		}

		body := utils.NormalizeField(content, utils.MaxCommentLen)
		if body == "" {
			return fmt.Errorf("%w: content is required", ErrValidation)
		}

		ts := s.now().Unix()
		comment = models.Comment{PostID: post.ID, Author: utils.NormalizeAuthor(author), Content: body, CreatedAt: ts}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		comment.Post = &post
		return bumpThread(tx, post.ThreadID, ts, false)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Stats counts threads, posts and comments.
func (s *ForumStore) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats
	if err := db.Model(&models.Thread{}).Count(&st.Threads).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Post{}).Count(&st.Posts).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Comment{}).Count(&st.Comments).Error; err != nil {
		return st, err
	}
	return st, nil
}

func resolveCategory(tx *gorm.DB, id *uint) (*models.Category, error) {
	var cat models.Category
	if id != nil {
		if err := tx.Where("id = ?", *id).Limit(1).Find(&cat).Error; err != nil {
			return nil, err
		}
	}
	if cat.ID == 0 {
		if err := tx.Order("id ASC").Limit(1).Find(&cat).Error; err != nil {
			return nil, err
		}
	}
	if cat.ID == 0 {
		return nil, ErrNoCategory
	}
	return &cat, nil
}

// bumpThread moves last_activity_at forward to ts (never backwards) and, for new posts,
// increments posts_count in the same statement.
func bumpThread(tx *gorm.DB, threadID uint, ts int64, newPost bool) error {
	updates := map[string]interface{}{
		"last_activity_at": gorm.Expr("CASE WHEN last_activity_at < ? THEN ? ELSE last_activity_at END", ts, ts),
	}
	if newPost {
		updates["posts_count"] = gorm.Expr("posts_count + ?", 1)
	}
	return tx.Model(&models.Thread{}).Where("id = ?", threadID).Updates(updates).Error
}
