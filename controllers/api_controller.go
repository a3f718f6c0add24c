package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minibbs/config"
	"github.com/cppla/minibbs/models"
	"github.com/cppla/minibbs/store"
	"github.com/cppla/minibbs/utils"
)

// APIController exposes a read-only JSON view of the board.
type APIController struct {
	forum *store.ForumStore
	cfg   config.AppConfig
}

// NewAPIController creates a new APIController instance.
func NewAPIController(forum *store.ForumStore, cfg config.AppConfig) *APIController {
	return &APIController{forum: forum, cfg: cfg}
}

type commentView struct {
	models.Comment
	ContentHTML string `json:"content_html"`
}

type postView struct {
	models.Post
	ContentHTML string        `json:"content_html"`
	Comments    []commentView `json:"comments"`
}

// ListCategories returns every category.
func (a *APIController) ListCategories(ctx *gin.Context) {
	cats, err := a.forum.ListCategories(ctx.Request.Context())
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": cats})
}

// ListThreads returns threads by last activity, filtered by ?cat=<slug>.
func (a *APIController) ListThreads(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), a.cfg.ThreadsPerPage)
	threads, err := a.forum.ListThreads(ctx.Request.Context(), strings.TrimSpace(ctx.Query("cat")), page, pageSize)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, threads)
}

// GetThread returns a thread with one page of posts. Post bodies are rendered from
// Markdown, comment bodies with line breaks only.
func (a *APIController) GetThread(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	thread, err := a.forum.GetThread(ctx.Request.Context(), id)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), a.cfg.PostsPerPage)
	posts, err := a.forum.ListPosts(ctx.Request.Context(), id, page, pageSize)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	comments, err := a.forum.ListCommentsForPosts(ctx.Request.Context(), postIDs(posts.Posts))
	if err != nil {
		a.fail(ctx, err)
		return
	}

	items := make([]postView, 0, len(posts.Posts))
	for _, p := range posts.Posts {
		view := postView{Post: p, ContentHTML: utils.RenderMarkdown(p.Content), Comments: []commentView{}}
		for _, c := range comments[p.ID] {
			view.Comments = append(view.Comments, commentView{
				Comment:     c,
				ContentHTML: utils.RenderMarkdown(c.Content),
			})
		}
		items = append(items, view)
	}

	utils.Success(ctx, gin.H{
		"thread":     thread,
		"pagination": posts.Pagination,
		"items":      items,
	})
}

// RecentPosts returns the newest posts across all threads.
func (a *APIController) RecentPosts(ctx *gin.Context) {
	posts, err := a.forum.ListRecentPosts(ctx.Request.Context(), a.cfg.RecentPostsLimit)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

func (a *APIController) fail(ctx *gin.Context, err error) {
	status, code, msg := statusFor(err)
	utils.Error(ctx, status, code, msg)
}
