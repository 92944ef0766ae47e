package planner

import (
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"sort"
	"strings"
	"time"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

type DateFilter string

const (
	DateAll     DateFilter = "all"
	DateToday   DateFilter = "today"
	DateWeek    DateFilter = "week"
	DateOverdue DateFilter = "overdue"
)

// TaskFilter 任务筛选条件，Priority 为 0 表示不限
type TaskFilter struct {
	Search   string
	Status   StatusFilter
	Priority int
	Date     DateFilter
}

// Apply 依次按搜索、状态、优先级、日期筛选（逻辑与）；today 为 YYYY-MM-DD
func (f TaskFilter) Apply(tasks []model.Task, today string) []model.Task {
	result := tasks
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		result = keep(result, func(t model.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), s) ||
				strings.Contains(strings.ToLower(t.Description), s)
		})
	}

	switch f.Status {
	case StatusCompleted:
		result = keep(result, func(t model.Task) bool { return t.Completed })
	case StatusPending:
		result = keep(result, func(t model.Task) bool { return !t.Completed })
	}

	if f.Priority > 0 {
		result = keep(result, func(t model.Task) bool { return t.Priority == f.Priority })
	}

	switch f.Date {
	case DateToday:
		result = keep(result, func(t model.Task) bool { return t.ScheduledDate == today })
	case DateWeek:
		weekEnd := today
		if d, err := util.ParseDate(today); err == nil {
			weekEnd = util.FormatDate(d.AddDate(0, 0, 7))
		}
		result = keep(result, func(t model.Task) bool {
			return t.ScheduledDate >= today && t.ScheduledDate <= weekEnd
		})
	case DateOverdue:
		result = keep(result, func(t model.Task) bool {
			return t.ScheduledDate < today && !t.Completed
		})
	}
	return result
}

func keep(tasks []model.Task, pred func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByDate 按计划日期分组，组内保持原顺序
func GroupByDate(tasks []model.Task) map[string][]model.Task {
	groups := make(map[string][]model.Task)
	for _, t := range tasks {
		groups[t.ScheduledDate] = append(groups[t.ScheduledDate], t)
	}
	return groups
}

// SortedDateKeys ISO 日期的字典序即时间顺序
func SortedDateKeys(groups map[string][]model.Task) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PageCount ceil(n/size)
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// PaginateDateGroups 按日期组分页（一页 size 个日期，而非 size 个任务），page 从 1 开始
func PaginateDateGroups(keys []string, page, size int) []string {
	if size <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(keys) {
		return nil
	}
	end := start + size
	if end > len(keys) {
		end = len(keys)
	}
	return keys[start:end]
}

type DateGroup struct {
	Date  string       `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// TaskPage 分页后的任务视图
type TaskPage struct {
	Groups      []DateGroup `json:"groups"`
	Page        int         `json:"page"`
	PageSize    int         `json:"pageSize"`
	TotalPages  int         `json:"totalPages"`
	TotalGroups int         `json:"totalGroups"`
	TotalTasks  int         `json:"totalTasks"`
}

// TaskBrowser 任务列表的筛选与分页状态；修改任一筛选条件都会回到第 1 页
type TaskBrowser struct {
	filter   TaskFilter
	page     int
	pageSize int
}

func NewTaskBrowser(pageSize int) *TaskBrowser {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &TaskBrowser{
		filter:   TaskFilter{Status: StatusAll, Date: DateAll},
		page:     1,
		pageSize: pageSize,
	}
}

func (b *TaskBrowser) Filter() TaskFilter { return b.filter }
func (b *TaskBrowser) Page() int { return b.page }

func (b *TaskBrowser) SetSearch(s string) {
	b.filter.Search = s
	b.page = 1
}

func (b *TaskBrowser) SetStatus(s StatusFilter) {
	b.filter.Status = s
	b.page = 1
}

func (b *TaskBrowser) SetPriority(p int) {
	b.filter.Priority = p
	b.page = 1
}

func (b *TaskBrowser) SetDate(d DateFilter) {
	b.filter.Date = d
	b.page = 1
}

// SetFilter 一次性替换全部筛选条件
func (b *TaskBrowser) SetFilter(f TaskFilter) {
	b.filter = f
	b.page = 1
}

func (b *TaskBrowser) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	b.page = page
}

// View 计算当前状态下的分页结果
func (b *TaskBrowser) View(tasks []model.Task, now time.Time) TaskPage {
	filtered := b.filter.Apply(tasks, util.Today(now))
	groups := GroupByDate(filtered)
	keys := SortedDateKeys(groups)

	page := TaskPage{
		Groups:      []DateGroup{},
		Page:        b.page,
		PageSize:    b.pageSize,
		TotalPages:  PageCount(len(keys), b.pageSize),
		TotalGroups: len(keys),
		TotalTasks:  len(filtered),
	}
	for _, k := range PaginateDateGroups(keys, b.page, b.pageSize) {
		page.Groups = append(page.Groups, DateGroup{Date: k, Tasks: groups[k]})
	}
	return page
}
