package controller

import (
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 个人资料与偏好设置
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary 获取个人资料
// @Tags 用户
// @Produce json
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response "未登录"
// @Security ApiKeyAuth
// @Router /api/user/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 修改个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param body body service.ProfileInput true "姓名与邮箱"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 409 {object} util.Response "邮箱已被占用"
// @Security ApiKeyAuth
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.ProfileInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetPreferences godoc
// @Summary 获取偏好设置
// @Description 未保存过时返回默认值
// @Tags 用户
// @Produce json
// @Success 200 {object} util.Response{data=model.UserPreference}
// @Security ApiKeyAuth
// @Router /api/user/preferences [get]
func (c *UserController) GetPreferences(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	pref, err := c.UserService.GetPreferences(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}

// UpdatePreferences godoc
// @Summary 修改偏好设置
// @Description 只修改提交的字段
// @Tags 用户
// @Accept json
// @Produce json
// @Param body body service.PreferencesInput true "偏好设置"
// @Success 200 {object} util.Response{data=model.UserPreference}
// @Failure 400 {object} util.Response "参数错误"
// @Security ApiKeyAuth
// @Router /api/user/preferences [put]
func (c *UserController) UpdatePreferences(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.PreferencesInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pref, err := c.UserService.UpdatePreferences(claims.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}
