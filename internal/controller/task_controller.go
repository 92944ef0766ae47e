package controller

import (
	"errors"
	"goal_pilot_backend/internal/planner"
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TaskController 任务列表、任务操作与阶段任务生成
type TaskController struct {
	TaskService  *service.TaskService
	StageService *service.StageService
}

func NewTaskController(taskService *service.TaskService, stageService *service.StageService) *TaskController {
	return &TaskController{TaskService: taskService, StageService: stageService}
}

// RescheduleRequest 改期
// swagger:model RescheduleRequest
type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
}

// DurationRequest 记录实际用时（分钟）
// swagger:model DurationRequest
type DurationRequest struct {
	ActualDuration int `json:"actualDuration" binding:"required"`
}

// PhaseTasksRequest 为某个阶段生成任务
// swagger:model PhaseTasksRequest
type PhaseTasksRequest struct {
	PhaseID   string `json:"phaseId" binding:"required"`
	RoadmapID string `json:"roadmapId" binding:"required"`
}

// TaskListParams 任务列表查询参数
type TaskListParams struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=all completed pending"`
	Priority int    `form:"priority" binding:"min=0,max=5"`
	Date     string `form:"date" binding:"omitempty,oneof=all today week overdue"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	GoalID   string `form:"goalId"`
}

// ListTasks godoc
// @Summary 任务列表
// @Description 按搜索、状态、优先级、日期依次筛选，按日期分组后分页
// @Tags 任务
// @Produce json
// @Param search query string false "标题或描述关键词"
// @Param status query string false "all|completed|pending"
// @Param priority query int false "优先级 1-5，0 表示不限"
// @Param date query string false "all|today|week|overdue"
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页日期分组数"
// @Param goalId query string false "只看某个目标"
// @Success 200 {object} util.Response{data=planner.TaskPage}
// @Failure 400 {object} util.Response "参数不合法"
// @Failure 401 {object} util.Response "未登录"
// @Security ApiKeyAuth
// @Router /api/tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	params := TaskListParams{Status: string(planner.StatusAll), Date: string(planner.DateAll), Page: 1}
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TaskService.List(claims.UserID, service.TaskListQuery{
		GoalID: params.GoalID,
		Filter: planner.TaskFilter{
			Search:   params.Search,
			Status:   planner.StatusFilter(params.Status),
			Priority: params.Priority,
			Date:     planner.DateFilter(params.Date),
		},
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// actionFail 任务操作失败时仍返回 ActionResult 结构
func actionFail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTaskNotFound):
		util.ActionFail(ctx, http.StatusNotFound, "Task not found")
	case errors.Is(err, util.ErrInvalidDate), errors.Is(err, util.ErrInvalidTaskInput):
		util.ActionFail(ctx, http.StatusBadRequest, err.Error())
	default:
		logger.L().Error("Task action failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.ActionFail(ctx, http.StatusInternalServerError, "Failed to update task")
	}
}

// CompleteTask godoc
// @Summary 完成任务
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} util.ActionResult[model.Task]
// @Failure 404 {object} util.ActionResult[any]
// @Security ApiKeyAuth
// @Router /api/tasks/{id}/complete [patch]
func (c *TaskController) CompleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.ActionFail(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	task, err := c.TaskService.Complete(ctx.Param("id"), claims.UserID)
	if err != nil {
		actionFail(ctx, err)
		return
	}
	util.ActionOK(ctx, task)
}

// UncompleteTask godoc
// @Summary 取消完成
// @Tags 任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} util.ActionResult[model.Task]
// @Failure 404 {object} util.ActionResult[any]
// @Security ApiKeyAuth
// @Router /api/tasks/{id}/uncomplete [patch]
func (c *TaskController) UncompleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.ActionFail(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	task, err := c.TaskService.Uncomplete(ctx.Param("id"), claims.UserID)
	if err != nil {
		actionFail(ctx, err)
		return
	}
	util.ActionOK(ctx, task)
}

// RescheduleTask godoc
// @Summary 任务改期
// @Description 修改计划日期并累加改期次数
// @Tags 任务
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param body body RescheduleRequest true "新日期 YYYY-MM-DD"
// @Success 200 {object} util.ActionResult[model.Task]
// @Failure 400 {object} util.ActionResult[any]
// @Security ApiKeyAuth
// @Router /api/tasks/{id}/reschedule [patch]
func (c *TaskController) RescheduleTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.ActionFail(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req RescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ActionFail(ctx, http.StatusBadRequest, err.Error())
		return
	}
	task, err := c.TaskService.Reschedule(ctx.Param("id"), claims.UserID, req.Date)
	if err != nil {
		actionFail(ctx, err)
		return
	}
	util.ActionOK(ctx, task)
}

// UpdateTaskDuration godoc
// @Summary 记录实际用时
// @Tags 任务
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param body body DurationRequest true "实际用时（分钟）"
// @Success 200 {object} util.ActionResult[model.Task]
// @Failure 400 {object} util.ActionResult[any]
// @Security ApiKeyAuth
// @Router /api/tasks/{id}/duration [patch]
func (c *TaskController) UpdateTaskDuration(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.ActionFail(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req DurationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ActionFail(ctx, http.StatusBadRequest, err.Error())
		return
	}
	task, err := c.TaskService.UpdateDuration(ctx.Param("id"), claims.UserID, req.ActualDuration)
	if err != nil {
		actionFail(ctx, err)
		return
	}
	util.ActionOK(ctx, task)
}

// GeneratePhaseTasksFast godoc
// @Summary 为阶段生成任务
// @Description 阶段已有任务时直接返回已有数量；模型调用失败时使用默认任务模板
// @Tags 任务
// @Accept json
// @Produce json
// @Param body body PhaseTasksRequest true "阶段与路线图"
// @Success 200 {object} service.PhaseTasksResult
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "阶段不存在"
// @Security ApiKeyAuth
// @Router /api/tasks/generate-phase-fast [post]
func (c *TaskController) GeneratePhaseTasksFast(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req PhaseTasksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.StageService.GeneratePhaseTasksFast(ctx.Request.Context(), req.RoadmapID, req.PhaseID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
