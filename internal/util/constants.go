package util

const (
	DateFormat  = "2006-01-02"
	TimeFormat  = "2006-01-02 15:04:05"
	MonthFormat = "2006-01"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 导出格式
const (
	ExportFormatICS  = "ics"
	ExportFormatXLSX = "xlsx"

	MimeCalendar = "text/calendar; charset=utf-8"
	MimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeJSON     = "application/json"
)
