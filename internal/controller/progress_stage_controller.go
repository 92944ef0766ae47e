package controller

import (
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProgressStageController struct {
	StageService *service.StageService
}

func NewProgressStageController(stageService *service.StageService) *ProgressStageController {
	return &ProgressStageController{StageService: stageService}
}

// AutoCreate godoc
// @Summary 按路线图自动创建进度阶段
// @Description 幂等：已存在的阶段不会重复创建
// @Tags 进度阶段
// @Accept json
// @Produce json
// @Param body body RoadmapIDRequest true "路线图ID"
// @Success 200 {object} service.AutoCreateResult
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "路线图不存在"
// @Security ApiKeyAuth
// @Router /api/progress-stages/auto-create [post]
func (c *ProgressStageController) AutoCreate(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req RoadmapIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.StageService.AutoCreate(req.RoadmapID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// List godoc
// @Summary 路线图的进度阶段
// @Tags 进度阶段
// @Produce json
// @Param roadmapId query string true "路线图ID"
// @Success 200 {object} util.Response{data=[]model.ProgressStage}
// @Failure 404 {object} util.Response "路线图不存在"
// @Security ApiKeyAuth
// @Router /api/progress-stages [get]
func (c *ProgressStageController) List(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	roadmapID := ctx.Query("roadmapId")
	if roadmapID == "" {
		util.BadRequest(ctx, "roadmapId is required")
		return
	}

	stages, err := c.StageService.List(roadmapID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stages)
}
