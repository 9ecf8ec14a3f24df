// Package dates parses the absolute and relative date expressions used by the
// "before" and "after" condition operators.
//
// Accepted forms:
//
//	""                     today
//	"2020-01-31"           that day
//	"18 years"             18 years from today
//	"2 months 10 days ago" 2 months and 10 days before today
//	"5"                    5 years from today (no unit means years)
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the only absolute date format understood by the parser.
const Layout = "2006-01-02"

var (
	reAbsolute = regexp.MustCompile(`^\d{4}-\d\d-\d\d$`)
	reAgo      = regexp.MustCompile(`\s+ago$`)
	reInterval = regexp.MustCompile(`(-?\d+)\s*(days?|months?|years?|)`)
)

// Parser decodes date expressions relative to a clock.
type Parser struct {
	now func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock replaces time.Now as the reference for "today".
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser creates a parser using the wall clock unless configured otherwise.
func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today returns the current day at midnight in the clock's location.
func (p *Parser) Today() time.Time {
	return StartOfDay(p.now())
}

// Decode turns an expression into a calendar day. It never fails: text that
// contains no interval tokens decodes to today.
func (p *Parser) Decode(expr string) time.Time {
	today := p.Today()
	if expr == "" {
		return today
	}
	if reAbsolute.MatchString(expr) {
		if day, err := time.ParseInLocation(Layout, expr, today.Location()); err == nil {
			return day
		}
		return today
	}

	sign := 1
	if reAgo.MatchString(expr) {
		sign = -1
	}

	date := today
	for _, m := range reInterval.FindAllStringSubmatch(expr, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		date = addInterval(date, sign*n, m[2])
	}
	return date
}

// ParseDay parses a strict YYYY-MM-DD value in the clock's location. A
// time.Time is taken as its calendar day.
func (p *Parser) ParseDay(value any) (time.Time, bool) {
	if t, ok := value.(time.Time); ok {
		return p.inClock(t), true
	}
	s, ok := value.(string)
	if !ok || !reAbsolute.MatchString(s) {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(Layout, s, p.now().Location())
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Normalize rewrites timestamps as YYYY-MM-DD days. YAML decoders turn an
// unquoted 2000-01-01 into a time.Time, or into its RFC3339 text once it has
// been through a document store. Other values are returned unchanged.
func Normalize(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.Format(Layout)
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v)); err == nil {
			return t.Format(Layout)
		}
	}
	return value
}

func (p *Parser) inClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.now().Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addInterval(t time.Time, n int, unit string) time.Time {
	switch strings.TrimSuffix(unit, "s") {
	case "day":
		return t.AddDate(0, 0, n)
	case "month":
		return addMonths(t, n)
	default:
		return addMonths(t, 12*n)
	}
}

// addMonths moves by calendar months, clamping to the last day of the target
// month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
