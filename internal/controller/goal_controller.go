package controller

import (
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// GoalStatusRequest 修改目标状态
// swagger:model GoalStatusRequest
type GoalStatusRequest struct {
	Status model.GoalStatus `json:"status" binding:"required"`
}

// CreateGoal godoc
// @Summary 创建目标
// @Tags 目标
// @Accept json
// @Produce json
// @Param body body service.GoalInput true "目标信息"
// @Success 201 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response "参数错误"
// @Security ApiKeyAuth
// @Router /api/goals [post]
func (c *GoalController) CreateGoal(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.GoalInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Create(claims.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, goal)
}

// ListGoals godoc
// @Summary 目标列表
// @Tags 目标
// @Produce json
// @Param status query string false "active|completed|paused"
// @Success 200 {object} util.Response{data=[]model.Goal}
// @Security ApiKeyAuth
// @Router /api/goals [get]
func (c *GoalController) ListGoals(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	goals, err := c.GoalService.List(claims.UserID, model.GoalStatus(ctx.Query("status")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

// GetGoal godoc
// @Summary 目标详情
// @Description 包含当前路线图（如果已生成）
// @Tags 目标
// @Produce json
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=service.GoalDetail}
// @Failure 404 {object} util.Response "目标不存在"
// @Security ApiKeyAuth
// @Router /api/goals/{id} [get]
func (c *GoalController) GetGoal(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	detail, err := c.GoalService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdateGoal godoc
// @Summary 修改目标
// @Tags 目标
// @Accept json
// @Produce json
// @Param id path string true "目标ID"
// @Param body body service.GoalInput true "目标信息"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "目标不存在"
// @Security ApiKeyAuth
// @Router /api/goals/{id} [put]
func (c *GoalController) UpdateGoal(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.GoalInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Update(ctx.Param("id"), claims.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// UpdateGoalStatus godoc
// @Summary 修改目标状态
// @Tags 目标
// @Accept json
// @Produce json
// @Param id path string true "目标ID"
// @Param body body GoalStatusRequest true "新状态"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response "状态无效"
// @Failure 404 {object} util.Response "目标不存在"
// @Security ApiKeyAuth
// @Router /api/goals/{id}/status [patch]
func (c *GoalController) UpdateGoalStatus(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req GoalStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.UpdateStatus(ctx.Param("id"), claims.UserID, req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// DeleteGoal godoc
// @Summary 删除目标
// @Description 同时删除路线图、进度阶段与任务
// @Tags 目标
// @Produce json
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "目标不存在"
// @Security ApiKeyAuth
// @Router /api/goals/{id} [delete]
func (c *GoalController) DeleteGoal(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.GoalService.Delete(ctx.Request.Context(), ctx.Param("id"), claims.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}
