package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cppla/minibbs/store"
	"github.com/cppla/minibbs/utils"
)

// statusFor maps store errors onto HTTP status codes and the envelope codes used by
// the JSON API. Unexpected errors are logged and hidden from the client.
func statusFor(err error) (status int, code int, msg string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest, 40001, err.Error()
	case errors.Is(err, store.ErrNoCategory):
		return http.StatusBadRequest, 40002, "no categories configured"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, 40401, "not found"
	default:
		utils.Logger.Error("forum store", zap.Error(err))
		return http.StatusInternalServerError, 50001, "internal error"
	}
}

// parseID accepts only unsigned decimal ids.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parsePagination(pageStr, sizeStr string, defaultSize int) (int, int) {
	page := 1
	pageSize := defaultSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}
