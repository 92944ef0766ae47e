package controller

import (
	"fmt"
	"goal_pilot_backend/internal/service"
	"goal_pilot_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CalendarController struct {
	CalendarService *service.CalendarService
	ExportService   *service.ExportService
}

func NewCalendarController(calendarService *service.CalendarService, exportService *service.ExportService) *CalendarController {
	return &CalendarController{CalendarService: calendarService, ExportService: exportService}
}

// GetMonth godoc
// @Summary 月历视图
// @Description 返回整月网格（周日开始）、按日期分组的任务、今日统计与选中日期的任务
// @Tags 日历
// @Produce json
// @Param month query string false "YYYY-MM，默认本月"
// @Param date query string false "选中日期 YYYY-MM-DD，默认今天"
// @Param goalId query string false "只看某个目标"
// @Success 200 {object} util.Response{data=service.CalendarView}
// @Failure 400 {object} util.Response "日期格式错误"
// @Security ApiKeyAuth
// @Router /api/calendar [get]
func (c *CalendarController) GetMonth(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	month, err := c.CalendarService.ParseMonth(ctx.Query("month"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	view, err := c.CalendarService.Month(claims.UserID, ctx.Query("goalId"), month, ctx.Query("date"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Export godoc
// @Summary 导出任务
// @Description format=ics（默认）导出 iCalendar，format=xlsx 导出表格
// @Tags 日历
// @Produce text/calendar
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "ics|xlsx" default(ics)
// @Param goalId query string false "只导出某个目标"
// @Success 200 {file} file
// @Failure 400 {object} util.Response "不支持的格式"
// @Security ApiKeyAuth
// @Router /api/calendar/export [get]
func (c *CalendarController) Export(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	file, err := c.ExportService.Export(claims.UserID, ctx.Query("goalId"), ctx.Query("format"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	ctx.Data(http.StatusOK, file.ContentType, file.Data)
}
