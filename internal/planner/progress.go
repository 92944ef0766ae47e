package planner

import (
	"strings"
	"time"
)

const titleMarker = `"title"`

// ProgressTracker 累积流式输出，检测新出现的 "title" 字段并按间隔节流进度事件
type ProgressTracker struct {
	interval time.Duration
	now      func() time.Time

	buf        strings.Builder
	scanFrom   int
	titles     int
	lastTitles int
	lastEmit   time.Time
}

func NewProgressTracker(interval time.Duration, now func() time.Time) *ProgressTracker {
	if now == nil {
		now = time.Now
	}
	return &ProgressTracker{interval: interval, now: now}
}

// Feed 追加一段输出；当出现尚未上报的 "title" 且距上次上报已满间隔时返回 true
func (p *ProgressTracker) Feed(chunk string) bool {
	p.buf.WriteString(chunk)
	text := p.buf.String()
	for {
		i := strings.Index(text[p.scanFrom:], titleMarker)
		if i < 0 {
			break
		}
		p.titles++
		p.scanFrom += i + len(titleMarker)
	}
	// 标记可能跨越两个分片，保留末尾不足一个标记长度的部分下次再扫
	if tail := len(text) - len(titleMarker) + 1; tail > p.scanFrom {
		p.scanFrom = tail
	}

	if p.titles <= p.lastTitles {
		return false
	}
	now := p.now()
	if !p.lastEmit.IsZero() && now.Sub(p.lastEmit) < p.interval {
		return false
	}
	p.lastTitles = p.titles
	p.lastEmit = now
	return true
}

// Titles 目前检测到的 "title" 次数
func (p *ProgressTracker) Titles() int {
	return p.titles
}

func (p *ProgressTracker) Text() string {
	return p.buf.String()
}

func (p *ProgressTracker) Len() int {
	return p.buf.Len()
}
