package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/minibbs/store"
	"github.com/cppla/minibbs/utils"
)

// StatsController provides board statistics.
type StatsController struct {
	forum *store.ForumStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(forum *store.ForumStore) *StatsController {
	return &StatsController{forum: forum}
}

// GetStats returns aggregate counts for the board.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.forum.Stats(ctx.Request.Context())
	if err != nil {
		// Fallback to zeros instead of failing the whole endpoint
		utils.Logger.Warn("stats query failed", zap.Error(err))
		stats = store.Stats{}
	}
	utils.Success(ctx, stats)
}
