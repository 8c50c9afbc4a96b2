package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Telegram limits.
const (
	MaxCaption = 1024
	MaxText    = 4096
)

// ScheduleLayout is the accepted broadcast time format.
const ScheduleLayout = "2006-01-02 15:04"

var (
	reID       = regexp.MustCompile(`^[0-9]{1,18}$`)
	reSchedule = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)
)

// ID parses a positive numeric identifier (user, chat or product id).
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

// Page parses a zero-based page number.
func Page(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 1000 {
		return 0, false
	}
	return n, true
}

// Caption trims and bounds a media caption.
func Caption(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= MaxCaption
}

// Text validates a broadcast text body.
func Text(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, utf8.RuneCountInString(s) <= MaxText
}

// ScheduleTime parses "YYYY-MM-DD HH:MM" in loc.
func ScheduleTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !reSchedule.MatchString(s) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(ScheduleLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
