package service

import (
	"bytes"
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	icsProductID   = "-//Goal Pilot//Task Calendar//EN"
	icsUIDDomain   = "goal-pilot"
	icsLocalLayout = "20060102T150405"

	// 任务在日历中固定为当天 09:00 开始、持续 30 分钟
	taskStartHour     = 9
	taskEventDuration = 30 * time.Minute
)

// ExportFile 导出结果
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	TaskRepo *repository.TaskRepository
	Now      func() time.Time
}

func NewExportService(taskRepo *repository.TaskRepository) *ExportService {
	return &ExportService{TaskRepo: taskRepo, Now: time.Now}
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeNewlines 统一为 \n，回车不会被 ToText 转义
func normalizeNewlines(s string) string {
	return lineBreaks.Replace(s)
}

// EscapeICS 按 RFC 5545 转义文本值（反斜杠、分号、逗号、换行）
func EscapeICS(s string) string {
	return ics.ToText(normalizeNewlines(s))
}

// Export 导出用户任务；goalID 为空时导出全部
func (s *ExportService) Export(userID uint, goalID, format string) (*ExportFile, error) {
	if format == "" {
		format = util.ExportFormatICS
	}
	if format != util.ExportFormatICS && format != util.ExportFormatXLSX {
		return nil, util.ErrInvalidExportFormat
	}

	tasks, err := s.TaskRepo.Find(repository.TaskQuery{UserID: userID, GoalID: goalID})
	if err != nil {
		return nil, err
	}

	stamp := s.Now().UTC()
	switch format {
	case util.ExportFormatXLSX:
		data, err := BuildTasksXLSX(tasks)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("goal-pilot-tasks-%s.xlsx", stamp.Format("20060102")),
			ContentType: util.MimeXLSX,
			Data:        data,
		}, nil
	default:
		data, err := BuildTasksICS(tasks, stamp)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    "goal-pilot-tasks.ics",
			ContentType: util.MimeCalendar,
			Data:        data,
		}, nil
	}
}

// BuildTasksICS 每个任务一个 VEVENT；时间不带时区，按用户本地时间解释
func BuildTasksICS(tasks []model.Task, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendarFor("Goal Pilot")
	cal.SetProductId(icsProductID)
	cal.SetMethod(ics.MethodPublish)

	for _, t := range tasks {
		day, err := util.ParseDate(t.ScheduledDate)
		if err != nil {
			logger.L().Warn("Skipping task with invalid date in export",
				zap.String("task_id", t.ID),
				zap.String("scheduled_date", t.ScheduledDate),
			)
			continue
		}
		start := day.Add(taskStartHour * time.Hour)

		event := cal.AddEvent(fmt.Sprintf("%s@%s", t.ID, icsUIDDomain))
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalLayout))
		event.SetProperty(ics.ComponentPropertyDtEnd, start.Add(taskEventDuration).Format(icsLocalLayout))
		// 序列化时会自动转义文本值
		event.SetSummary(normalizeNewlines(t.Title))
		if t.Description != "" {
			event.SetDescription(normalizeNewlines(t.Description))
		}
		event.SetPriority(icsPriority(t.Priority))
		if t.Completed {
			event.SetStatus(ics.ObjectStatusCompleted)
		} else {
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize(ics.WithNewLineWindows)), nil
}

// icsPriority 任务优先级 5 最高，ICS 中 1 最高
func icsPriority(p int) int {
	if p < 1 {
		p = 1
	}
	if p > 5 {
		p = 5
	}
	return 6 - p
}

// BuildTasksXLSX 导出为单个工作表
func BuildTasksXLSX(tasks []model.Task) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Tasks"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Title", "Description", "Phase", "Type", "Priority", "Estimated (min)", "Actual (min)", "Completed", "Rescheduled"}
	widths := []float64{12, 36, 60, 8, 12, 10, 16, 14, 12, 12}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, t := range tasks {
		row := i + 2
		actual := ""
		if t.ActualDuration != nil {
			actual = fmt.Sprint(*t.ActualDuration)
		}
		completed := "No"
		if t.Completed {
			completed = "Yes"
		}
		values := []interface{}{
			t.ScheduledDate,
			t.Title,
			t.Description,
			t.PhaseNumber,
			t.TaskType,
			t.Priority,
			t.EstimatedDuration,
			actual,
			completed,
			t.RescheduledCount,
		}
		for j, v := range values {
			f.SetCellValue(sheetName, cell(colName(j), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		logger.L().Error("Failed to write xlsx export", zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
