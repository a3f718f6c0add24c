package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minibbs/config"
	"github.com/cppla/minibbs/middleware"
	"github.com/cppla/minibbs/models"
	"github.com/cppla/minibbs/store"
)

// ForumController serves the server-rendered board pages and form posts.
type ForumController struct {
	forum *store.ForumStore
	cfg   config.AppConfig
}

// NewForumController creates a new ForumController instance.
func NewForumController(forum *store.ForumStore, cfg config.AppConfig) *ForumController {
	return &ForumController{forum: forum, cfg: cfg}
}

// Index renders the thread list, optionally filtered by ?cat=<slug>.
func (f *ForumController) Index(ctx *gin.Context) {
	page := store.ParsePage(ctx.Query("page"))
	slug := strings.TrimSpace(ctx.Query("cat"))

	threads, err := f.forum.ListThreads(ctx.Request.Context(), slug, page, f.cfg.ThreadsPerPage)
	if err != nil {
		f.fail(ctx, err)
		return
	}
	categories, err := f.forum.ListCategories(ctx.Request.Context())
	if err != nil {
		f.fail(ctx, err)
		return
	}
	recent, err := f.forum.ListRecentPosts(ctx.Request.Context(), f.cfg.RecentPostsLimit)
	if err != nil {
		f.fail(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"threads":    threads,
		"categories": categories,
		"recent":     recent,
		"slug":       slug,
		"csrf_token": ctx.GetString(middleware.ContextCSRFKey),
	})
}

// ShowThread renders one page of a thread with the comments of the visible posts.
func (f *ForumController) ShowThread(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		ctx.String(http.StatusNotFound, "Thread not found")
		return
	}
	thread, err := f.forum.GetThread(ctx.Request.Context(), id)
	if err != nil {
		f.fail(ctx, err)
		return
	}
	posts, err := f.forum.ListPosts(ctx.Request.Context(), id, store.ParsePage(ctx.Query("page")), f.cfg.PostsPerPage)
	if err != nil {
		f.fail(ctx, err)
		return
	}
	comments, err := f.forum.ListCommentsForPosts(ctx.Request.Context(), postIDs(posts.Posts))
	if err != nil {
		f.fail(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "thread.html", gin.H{
		"thread":     thread,
		"posts":      posts,
		"comments":   comments,
		"csrf_token": ctx.GetString(middleware.ContextCSRFKey),
	})
}

// CreateThread handles the new-thread form.
func (f *ForumController) CreateThread(ctx *gin.Context) {
	in := store.NewThread{
		Title:   ctx.PostForm("title"),
		Author:  ctx.PostForm("author"),
		Content: ctx.PostForm("content"),
	}
	if id, ok := parseID(strings.TrimSpace(ctx.PostForm("category_id"))); ok {
		in.CategoryID = &id
	}

	thread, err := f.forum.CreateThread(ctx.Request.Context(), in)
	if err != nil {
		f.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/thread/%d", thread.ID))
}

// Reply handles the reply form of a thread.
func (f *ForumController) Reply(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		ctx.String(http.StatusNotFound, "Thread not found")
		return
	}
	post, err := f.forum.AddReply(ctx.Request.Context(), id, ctx.PostForm("author"), ctx.PostForm("content"))
	if err != nil {
		f.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/thread/%d", post.ThreadID))
}

// Comment handles the comment form under a post.
func (f *ForumController) Comment(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		ctx.String(http.StatusNotFound, "Post not found")
		return
	}
	comment, err := f.forum.AddComment(ctx.Request.Context(), id, ctx.PostForm("author"), ctx.PostForm("content"))
	if err != nil {
		f.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/thread/%d#p%d", comment.Post.ThreadID, comment.PostID))
}

func (f *ForumController) fail(ctx *gin.Context, err error) {
	status, _, msg := statusFor(err)
	ctx.String(status, msg)
	ctx.Abort()
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
