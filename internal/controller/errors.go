package controller

import (
	"errors"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUser 取出认证中间件写入的用户；未登录时直接返回 401
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

// respondError 把服务层错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrGoalNotFound),
		errors.Is(err, util.ErrRoadmapNotFound),
		errors.Is(err, util.ErrStageNotFound),
		errors.Is(err, util.ErrTaskNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, capitalize(err))
	case errors.Is(err, util.ErrGenerationInProgress),
		errors.Is(err, util.ErrStagesAlreadyGenerated),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, capitalize(err))
	case errors.Is(err, util.ErrInvalidGoal),
		errors.Is(err, util.ErrInvalidSchedule),
		errors.Is(err, util.ErrInvalidDate),
		errors.Is(err, util.ErrInvalidExportFormat),
		errors.Is(err, util.ErrInvalidStrategy),
		errors.Is(err, util.ErrInvalidTaskInput),
		errors.Is(err, util.ErrInvalidProfile):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, util.ErrMalformedModelOutput),
		errors.Is(err, util.ErrEmptyModelOutput):
		// 模型原文不返回给客户端
		logger.L().Error("Model output rejected", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.Error(ctx, http.StatusInternalServerError, "Failed to generate roadmap")
	default:
		util.LogInternalError(ctx, err)
	}
}

func capitalize(err error) string {
	msg := err.Error()
	if msg == "" || msg[0] < 'a' || msg[0] > 'z' {
		return msg
	}
	return string(msg[0]-'a'+'A') + msg[1:]
}
