package timeline

import (
	"regexp"
	"strconv"
	"time"
)

// Base-date policy: when a document carries no usable date, the deal is
// assumed to have closed defaultBaseMonthsAgo months before analysis time.
// Dates found in the document are only trusted within
// [baseDateFloorYear, now + 1 year].
const (
	defaultBaseMonthsAgo = 2
	baseDateFloorYear    = 2020
)

var closeDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)close date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)closed[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)decision date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)final date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
}

var monthDayYearRe = regexp.MustCompile(`(?i)\b([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})\b`)

// ExtractBaseDate finds the most relevant anchor date in a document: an
// explicit close/decision date if one is stated, otherwise the latest
// in-range date mentioned anywhere, otherwise a fixed offset before now.
// Anchoring to the document keeps inferred timelines in the deal's own time
// window instead of making every analysis look recent.
func ExtractBaseDate(text string, now time.Time) time.Time {
	now = truncateToDay(now)
	ceiling := now.AddDate(1, 0, 0)

	inRange := func(t time.Time) bool {
		return t.Year() >= baseDateFloorYear && !t.After(ceiling)
	}

	for _, re := range closeDateRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := parseAbsolute(m[1]); ok && inRange(t) {
			return t
		}
	}

	var found []time.Time
	for _, m := range isoDateRe.FindAllStringSubmatch(text, -1) {
		if t, ok := makeDate(m[1], m[2], m[3]); ok && inRange(t) {
			found = append(found, t)
		}
	}
	for _, m := range monthDayYearRe.FindAllStringSubmatch(text, -1) {
		month, ok := monthByName(m[1])
		if !ok {
			continue
		}
		if t, ok := makeDate(m[3], strconv.Itoa(int(month)), m[2]); ok && inRange(t) {
			found = append(found, t)
		}
	}

	if len(found) > 0 {
		latest := found[0]
		for _, t := range found[1:] {
			if t.After(latest) {
				latest = t
			}
		}
		if latest.After(now) {
			return now.AddDate(0, -anchorMonthsAgo, 0)
		}
		return latest
	}

	return now.AddDate(0, -defaultBaseMonthsAgo, 0)
}
