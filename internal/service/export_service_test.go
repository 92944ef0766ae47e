package service

import (
	"bytes"
	"errors"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\\b;c,d\ne", `a\\b\;c\,d\ne`},
		{"a;b,c\nd\r\ne", `a\;b\,c\nd\ne`},
		{"old\rmac", `old\nmac`},
	}
	for _, tt := range tests {
		got := EscapeICS(tt.in)
		if got != tt.want {
			t.Errorf("EscapeICS(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if strings.ContainsAny(got, "\r\n") {
			t.Errorf("EscapeICS(%q) left a raw control character", tt.in)
		}
	}
}

func TestExportICS(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.tasks)
	svc.Now = fixedNow("2026-03-10 08:00")
	tasks := seedTasks(t, f, 1,
		model.Task{Title: "Read, review; repeat", ScheduledDate: "2026-03-10", Priority: 5, Completed: true},
		model.Task{Title: "Practice", ScheduledDate: "2026-03-11", Priority: 2, Description: "first\r\nsecond"},
	)

	file, err := svc.Export(1, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if file.ContentType != util.MimeCalendar {
		t.Errorf("content type = %q", file.ContentType)
	}
	body := string(file.Data)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:" + tasks[0].ID + "@goal-pilot",
		"DTSTART:20260310T090000",
		"DTEND:20260310T093000",
		"PRIORITY:1",
		"STATUS:COMPLETED",
		"SUMMARY:" + EscapeICS(tasks[0].Title),
		"DTSTART:20260311T090000",
		"PRIORITY:4",
		"STATUS:CONFIRMED",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("ICS missing %q", want)
		}
	}
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("events = %d", n)
	}

	// 行以 CRLF 结尾，内容中不残留裸回车或换行
	if !strings.HasSuffix(body, "END:VCALENDAR\r\n") {
		t.Errorf("calendar does not end with CRLF: %q", body[len(body)-20:])
	}
	for _, line := range strings.Split(strings.TrimSuffix(body, "\r\n"), "\r\n") {
		if strings.ContainsAny(line, "\r\n") {
			t.Errorf("line contains a bare control character: %q", line)
		}
	}
	if !strings.Contains(body, `DESCRIPTION:first\nsecond`) {
		t.Errorf("CRLF description not escaped:\n%s", body)
	}
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.tasks)
	seedTasks(t, f, 1, model.Task{Title: "Read", ScheduledDate: "2026-03-10"})

	file, err := svc.Export(1, "", util.ExportFormatXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if file.ContentType != util.MimeXLSX || !strings.HasSuffix(file.Filename, ".xlsx") {
		t.Errorf("file = %s %s", file.Filename, file.ContentType)
	}

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatal(err)
	}
	defer book.Close()
	title, _ := book.GetCellValue("Tasks", "B2")
	date, _ := book.GetCellValue("Tasks", "A2")
	if title != "Read" || date != "2026-03-10" {
		t.Errorf("row 2 = %q %q", date, title)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.tasks)
	if _, err := svc.Export(1, "", "pdf"); !errors.Is(err, util.ErrInvalidExportFormat) {
		t.Errorf("got %v", err)
	}
}
