package constants

const (
	// DateFormat is the standard date format used for CLI input and output (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// EntryDateFormat is the day.month.year form stored in the entry "date" field
	EntryDateFormat = "2.01.2006"

	// TimestampFormat is the ISO-8601 form entries are persisted with (always UTC, millisecond precision)
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)
