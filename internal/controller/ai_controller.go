package controller

import (
	"errors"
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AIController struct {
	Generation *service.GenerationService
}

func NewAIController(generation *service.GenerationService) *AIController {
	return &AIController{Generation: generation}
}

// GoalIDRequest 按目标生成
// swagger:model GoalIDRequest
type GoalIDRequest struct {
	GoalID string `json:"goalId" binding:"required"`
}

// RoadmapIDRequest 按路线图补全阶段
// swagger:model RoadmapIDRequest
type RoadmapIDRequest struct {
	RoadmapID string `json:"roadmapId" binding:"required"`
}

// RegenerateRequest 重新生成路线图
// swagger:model RegenerateRequest
type RegenerateRequest struct {
	Strategy string `json:"strategy" binding:"required,oneof=instant fast"`
}

// GenerateInstant godoc
// @Summary 模板即时生成路线图
// @Description 目标标题匹配内置模板时直接生成路线图、阶段与任务，不调用大模型
// @Tags AI
// @Accept json
// @Produce json
// @Param body body GoalIDRequest true "目标ID"
// @Success 200 {object} object "{success, roadmapId, instant} 或 {success:false, message}"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "目标不存在"
// @Failure 409 {object} util.Response "正在生成中"
// @Security ApiKeyAuth
// @Router /api/ai/generate-instant [post]
func (c *AIController) GenerateInstant(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req GoalIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Generation.GenerateInstant(ctx.Request.Context(), req.GoalID, claims.UserID)
	if errors.Is(err, util.ErrNoTemplate) {
		ctx.JSON(http.StatusOK, gin.H{"success": false, "message": "No matching template found"})
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"roadmapId": result.RoadmapID,
		"instant":   true,
	})
}

// GenerateOverviewFast godoc
// @Summary 快速生成路线图概览
// @Description 一次小模型调用生成概览与阶段标题，阶段详情由 generate-stages-fast 补全
// @Tags AI
// @Accept json
// @Produce json
// @Param body body GoalIDRequest true "目标ID"
// @Success 200 {object} object "{success, roadmapId}"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "目标不存在"
// @Failure 500 {object} util.Response "生成失败"
// @Security ApiKeyAuth
// @Router /api/ai/generate-overview-fast [post]
func (c *AIController) GenerateOverviewFast(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req GoalIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Generation.GenerateOverviewFast(ctx.Request.Context(), req.GoalID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "roadmapId": result.RoadmapID})
}

// GenerateStagesFast godoc
// @Summary 快速补全阶段详情
// @Tags AI
// @Accept json
// @Produce json
// @Param body body RoadmapIDRequest true "路线图ID"
// @Success 200 {object} object "{success}"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "路线图不存在"
// @Failure 409 {object} util.Response "阶段详情已生成或正在生成"
// @Failure 500 {object} util.Response "生成失败"
// @Security ApiKeyAuth
// @Router /api/ai/generate-stages-fast [post]
func (c *AIController) GenerateStagesFast(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req RoadmapIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if _, err := c.Generation.GenerateStagesFast(ctx.Request.Context(), req.RoadmapID, claims.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateRoadmapStream godoc
// @Summary 流式生成完整路线图
// @Description 校验通过后以 SSE 推送 {type: status|progress|complete|error} 事件；客户端断开后服务端仍会完成生成并保存
// @Tags AI
// @Accept json
// @Produce text/event-stream
// @Param body body GoalIDRequest true "目标ID"
// @Success 200 {object} service.StreamEvent
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "目标不存在"
// @Failure 409 {object} util.Response "正在生成中"
// @Security ApiKeyAuth
// @Router /api/ai/generate-roadmap-stream [post]
func (c *AIController) GenerateRoadmapStream(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req GoalIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 打开流之前的错误以 JSON 返回
	goal, release, err := c.Generation.PrepareStream(ctx.Request.Context(), req.GoalID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer release()

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	clientGone := ctx.Request.Context().Done()
	connected := true
	emit := func(ev service.StreamEvent) bool {
		if !connected {
			return false
		}
		select {
		case <-clientGone:
			connected = false
			return false
		default:
		}
		ctx.SSEvent("", ev)
		ctx.Writer.Flush()
		return true
	}

	result, err := c.Generation.GenerateStream(ctx.Request.Context(), goal, emit)
	if err != nil {
		logger.L().Error("Streamed roadmap generation failed",
			zap.String("goal_id", goal.ID),
			zap.Error(err),
		)
		emit(service.StreamEvent{Type: service.EventError, Message: "Failed to generate roadmap"})
		return
	}
	logger.L().Info("Streamed roadmap generated",
		zap.String("goal_id", goal.ID),
		zap.String("roadmap_id", result.RoadmapID),
		zap.Int("tasks", result.TasksCount),
	)
}

// Regenerate godoc
// @Summary 重新生成路线图
// @Description 新路线图保存成功后替换旧路线图，失败时旧路线图保持不变
// @Tags 目标
// @Accept json
// @Produce json
// @Param id path string true "目标ID"
// @Param body body RegenerateRequest true "生成策略"
// @Success 200 {object} util.Response{data=service.GenerationResult}
// @Failure 400 {object} util.Response "策略无效"
// @Failure 404 {object} util.Response "目标不存在"
// @Failure 409 {object} util.Response "正在生成中"
// @Security ApiKeyAuth
// @Router /api/goals/{id}/regenerate [post]
func (c *AIController) Regenerate(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req RegenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Generation.Regenerate(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.Strategy)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
