package timeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/deal-forensics/internal/model"
)

// minYear is the floor for any resolved or synthesized date. Anything
// earlier indicates an epoch/garbage parse and is rejected.
const minYear = 2000

// anchorMonthsAgo is how far before the reference date a deal is assumed to
// have started when nothing better is known.
const anchorMonthsAgo = 4

// fallbackAnchor is the fixed anchor used when clamping would otherwise
// produce a pre-2000 date.
var fallbackAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// phaseWindows maps each phase to its day-offset window relative to the
// assumed deal start. Windows are disjoint and cover a 90-day deal arc.
var phaseWindows = map[model.Phase][2]int{
	model.PhaseDiscovery:  {0, 14},
	model.PhasePricing:    {14, 35},
	model.PhaseDelivery:   {35, 50},
	model.PhaseEscalation: {50, 70},
	model.PhaseDecision:   {70, 90},
}

// DateInferencer resolves natural-language date expressions into concrete
// calendar dates and synthesizes chronologically consistent dates when no
// expression exists. All output dates are strictly before the reference
// date and never before year 2000.
type DateInferencer struct {
	base    time.Time
	current time.Time
}

// NewDateInferencer creates an inferencer anchored at base. A zero base
// defaults to the current wall-clock date.
func NewDateInferencer(base time.Time) *DateInferencer {
	if base.IsZero() {
		base = time.Now()
	}
	base = truncateToDay(base)
	return &DateInferencer{base: base, current: base}
}

// Base returns the reference date.
func (d *DateInferencer) Base() time.Time { return d.base }

// Advance moves the running pointer used to resolve relative expressions.
func (d *DateInferencer) Advance(t time.Time) {
	if !t.IsZero() {
		d.current = truncateToDay(t)
	}
}

var (
	relDaysRe   = regexp.MustCompile(`(\d+)\s+days?\s+later`)
	relWeeksRe  = regexp.MustCompile(`(\d+)\s+weeks?\s+later`)
	relMonthsRe = regexp.MustCompile(`(\d+)\s+months?\s+later`)
	nextWeekRe  = regexp.MustCompile(`next\s+week`)
	nextMonthRe = regexp.MustCompile(`next\s+month`)
	twoDaysRe   = regexp.MustCompile(`two\s+days?\s+later`)
	threeDaysRe = regexp.MustCompile(`three\s+days?\s+later`)

	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayRe  = regexp.MustCompile(`(?i)\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`)
	bareDayRe   = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)?`)
)

// monthNames is ordered longest-first so "march" never half-matches "mar".
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February}, {"march", time.March},
	{"april", time.April}, {"august", time.August}, {"september", time.September},
	{"october", time.October}, {"november", time.November}, {"december", time.December},
	{"sept", time.September},
	{"jan", time.January}, {"feb", time.February}, {"mar", time.March},
	{"apr", time.April}, {"may", time.May}, {"june", time.June}, {"jun", time.June},
	{"july", time.July}, {"jul", time.July}, {"aug", time.August},
	{"sep", time.September}, {"oct", time.October}, {"nov", time.November},
	{"dec", time.December},
}

// Parse attempts to resolve a natural-language date expression. It tries, in
// order: absolute forms ("2024-01-05", "January 5th, 2024", "1/5/2024"),
// relative expressions resolved against the running pointer ("two days
// later", "next week"), and bare month-name + day forms resolved against
// the reference year. A false return is not an error: it signals that the
// date must be synthesized instead.
func (d *DateInferencer) Parse(text string) (time.Time, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return time.Time{}, false
	}

	if t, ok := parseAbsolute(text); ok {
		return t, true
	}

	if t, ok := d.parseRelative(text); ok {
		return t, true
	}

	if t, ok := d.parseMonthDay(text); ok {
		return t, true
	}

	return time.Time{}, false
}

// parseAbsolute handles fully-specified date forms anywhere in the text.
// Results with year < 2000 are rejected.
func parseAbsolute(text string) (time.Time, bool) {
	for _, layout := range []string{
		model.ISODate,
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"January 2 2006",
		"2 January 2006",
		"2 Jan 2006",
	} {
		if t, err := time.Parse(layout, strings.TrimSpace(text)); err == nil {
			if t.Year() >= minYear {
				return truncateToDay(t), true
			}
			return time.Time{}, false
		}
	}

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if t, ok := makeDate(m[1], m[2], m[3]); ok {
			return t, true
		}
	}
	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		// US convention: month/day/year.
		if t, ok := makeDate(m[3], m[1], m[2]); ok {
			return t, true
		}
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil && m[3] != "" {
		if month, ok := monthByName(m[1]); ok {
			if t, ok := makeDate(m[3], strconv.Itoa(int(month)), m[2]); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// parseRelative resolves "N days/weeks/months later" style expressions
// against the running pointer.
func (d *DateInferencer) parseRelative(text string) (time.Time, bool) {
	if m := relDaysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return d.current.AddDate(0, 0, n), true
	}
	if m := relWeeksRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return d.current.AddDate(0, 0, 7*n), true
	}
	if m := relMonthsRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return d.current.AddDate(0, n, 0), true
	}
	if twoDaysRe.MatchString(text) {
		return d.current.AddDate(0, 0, 2), true
	}
	if threeDaysRe.MatchString(text) {
		return d.current.AddDate(0, 0, 3), true
	}
	if nextWeekRe.MatchString(text) {
		return d.current.AddDate(0, 0, 7), true
	}
	if nextMonthRe.MatchString(text) {
		return d.current.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}

// parseMonthDay resolves a bare month name plus day number against the
// reference year, clamping invalid days to 28.
func (d *DateInferencer) parseMonthDay(text string) (time.Time, bool) {
	for _, mn := range monthNames {
		idx := strings.Index(text, mn.name)
		if idx < 0 {
			continue
		}
		m := bareDayRe.FindStringSubmatch(text[idx+len(mn.name):])
		if m == nil {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year := d.base.Year()
		if !validDay(year, mn.month, day) {
			day = 28
		}
		return time.Date(year, mn.month, day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// InferPhaseDate synthesizes a plausible date for an event of the given
// phase, interpolating within the phase's day window by the event's
// fractional position. The result is strictly before the reference date
// and never before year 2000.
func (d *DateInferencer) InferPhaseDate(phase model.Phase, eventIndex, totalEvents int) time.Time {
	start := d.base.AddDate(0, -anchorMonthsAgo, 0)

	if totalEvents < 1 {
		totalEvents = 1
	}
	progress := float64(eventIndex) / float64(totalEvents)

	var offset int
	if w, ok := phaseWindows[phase]; ok {
		offset = w[0] + int(float64(w[1]-w[0])*progress)
	} else {
		offset = int(progress * 90)
	}

	inferred := start.AddDate(0, 0, offset)
	return d.clamp(inferred, offset)
}

// NextDate returns lastDate advanced by gapDays, clamped to the valid
// window. A zero lastDate anchors at the assumed deal start.
func (d *DateInferencer) NextDate(lastDate time.Time, gapDays int) time.Time {
	if lastDate.IsZero() {
		return d.base.AddDate(0, -anchorMonthsAgo, 0)
	}
	return d.clamp(lastDate.AddDate(0, 0, gapDays), 0)
}

// GapDays cycles through 1..7 by event index so synthesized spacing never
// looks uniformly regular.
func GapDays(eventIndex int) int {
	return eventIndex%7 + 1
}

// clamp enforces the date floor/ceiling: strictly before the reference
// date, never before year 2000.
func (d *DateInferencer) clamp(t time.Time, offset int) time.Time {
	if t.After(d.base) {
		t = d.base.AddDate(0, 0, -1)
	}
	if t.Year() < minYear {
		t = fallbackAnchor.AddDate(0, 0, offset)
	}
	return t
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthByName(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for _, mn := range monthNames {
		if mn.name == name {
			return mn.month, true
		}
	}
	return 0, false
}

func validDay(year int, month time.Month, day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Day() == day
}

func makeDate(yearS, monthS, dayS string) (time.Time, bool) {
	year, _ := strconv.Atoi(yearS)
	month, _ := strconv.Atoi(monthS)
	day, _ := strconv.Atoi(dayS)
	if year < minYear || month < 1 || month > 12 {
		return time.Time{}, false
	}
	if !validDay(year, time.Month(month), day) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
