package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

const dateLayout = "2006-01-02"

// parseIDParam reads a positive numeric path parameter, answering 400 when it is malformed.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryUserID reads the mandatory userId query parameter.
func queryUserID(ctx *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(ctx.Query("userId"))
	if raw == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "userId query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid userId")
		return 0, false
	}
	return uint(id), true
}

// parseTimeQuery accepts RFC3339 or a local YYYY-MM-DD date. Empty input yields the zero time.
func parseTimeQuery(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateLayout, raw, time.Local)
}

// handleStoreErr maps store sentinels onto HTTP statuses. Unexpected errors are logged and answered with 500.
func handleStoreErr(ctx *gin.Context, logger *zap.Logger, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, store.ErrInvalidReference):
		utils.Error(ctx, http.StatusBadRequest, 40020, err.Error())
	case errors.Is(err, store.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	default:
		logger.Error("store operation failed",
			zap.String("op", op),
			zap.String("request_id", ctx.GetString("request_id")),
			zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "failed to "+op)
	}
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
