// Package dealdoc infers deal metadata (name, owner, industry, value,
// close date, stage) from an unstructured deal document. Structured
// "key: value" lines near the top of the document win; pattern scans over
// the full text fill whatever those left blank.
package dealdoc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/deal-forensics/internal/model"
)

const (
	defaultName     = "Untitled Deal"
	defaultOwner    = "Unknown"
	defaultIndustry = "General"
	defaultStage    = "Closed Lost"

	// Only the document header is scanned for structured fields.
	headerLines = 50
)

var titleCaser = cases.Title(language.English)

var (
	nameKeys     = keySet("deal", "deal name", "opportunity", "customer", "buyer", "client")
	ownerKeys    = keySet("owner", "rep", "sales rep", "seller", "account manager")
	industryKeys = keySet("industry", "vertical", "sector")
	valueKeys    = keySet("value", "amount", "arr", "acv", "deal value", "deal size", "revenue")
	dateKeys     = keySet("close date", "closed", "decision date", "closed date", "final date")
	stageKeys    = keySet("stage", "sales stage", "status", "outcome")
)

var closeDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var (
	nonNumericRe = regexp.MustCompile(`[^\d.]`)

	valueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$[\d,]+\.?\d*\s*(?:million|m)\b`),
		regexp.MustCompile(`\$[\d,]+`),
		regexp.MustCompile(`(?i)deal value[:\s]+\$?[\d,]+`),
		regexp.MustCompile(`(?i)value[:\s]+\$?[\d,]+`),
		regexp.MustCompile(`(?i)\$?[\d,]+\.?\d*\s*(?:million|M)\b`),
	}

	ownerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)owner[:\s]+([A-Z][a-zA-Z\s]+)`),
		regexp.MustCompile(`(?i)sales rep[:\s]+([A-Z][a-zA-Z\s]+)`),
		regexp.MustCompile(`(?i)rep[:\s]+([A-Z][a-zA-Z\s]+)`),
		regexp.MustCompile(`(?i)account manager[:\s]+([A-Z][a-zA-Z\s]+)`),
	}
)

// titleWords mark a header line as a plausible deal name.
var titleWords = []string{"deal", "opportunity", "platform", "system", "solution"}

// industryKeywords map an inferred industry to its indicator terms; checked
// in a fixed order so overlapping vocabularies resolve deterministically.
var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{"technology", []string{"tech", "saas", "software", "platform", "cloud", "digital"}},
	{"healthcare", []string{"health", "medical", "hospital", "clinic", "patient"}},
	{"financial", []string{"finance", "banking", "financial", "investment", "capital"}},
	{"retail", []string{"retail", "e-commerce", "commerce", "store", "merchant"}},
	{"manufacturing", []string{"manufacturing", "production", "factory", "industrial"}},
	{"education", []string{"education", "school", "university", "learning", "student"}},
}

// InferMetadata extracts a Deal record from document text. It never fails;
// any field it cannot resolve keeps its documented default.
func InferMetadata(text string) model.Deal {
	deal := model.Deal{
		Name:     defaultName,
		Owner:    defaultOwner,
		Industry: defaultIndustry,
		Stage:    defaultStage,
	}
	lower := strings.ToLower(text)

	lines := strings.Split(text, "\n")
	if len(lines) > headerLines {
		lines = lines[:headerLines]
	}
	for _, line := range lines {
		key, val, ok := splitKeyValue(line)
		if !ok || val == "" {
			continue
		}
		switch {
		case nameKeys[key]:
			deal.Name = val
		case ownerKeys[key]:
			deal.Owner = val
		case industryKeys[key]:
			deal.Industry = val
		case valueKeys[key]:
			if v, ok := parseMoney(val); ok {
				deal.Value = v
			}
		case dateKeys[key]:
			if t, ok := parseCloseDate(val); ok {
				deal.CloseDate = &t
			}
		case stageKeys[key]:
			deal.Stage = val
		}
	}

	if deal.Value == 0 {
		for _, re := range valueRes {
			m := re.FindString(text)
			if m == "" {
				continue
			}
			if v, ok := parseMoney(m); ok {
				deal.Value = v
				break
			}
		}
	}

	if deal.Name == defaultName {
		deal.Name = inferTitle(text)
	}

	if deal.Owner == defaultOwner {
		for _, re := range ownerRes {
			if m := re.FindStringSubmatch(text); m != nil {
				owner := strings.TrimSpace(m[1])
				if len(owner) > 50 {
					owner = owner[:50]
				}
				deal.Owner = owner
				break
			}
		}
	}

	if deal.Industry == defaultIndustry {
		for _, ik := range industryKeywords {
			for _, kw := range ik.keywords {
				if strings.Contains(lower, kw) {
					deal.Industry = titleCaser.String(ik.industry)
					break
				}
			}
			if deal.Industry != defaultIndustry {
				break
			}
		}
	}

	return deal
}

func splitKeyValue(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	val = strings.TrimSpace(line[idx+1:])
	return key, val, true
}

// parseMoney handles "$2,500,000", "2.5M", "$1.2 million", "500K".
func parseMoney(s string) (float64, bool) {
	cleaned := nonNumericRe.ReplaceAllString(strings.ReplaceAll(s, ",", ""), "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "million") || strings.Contains(lower, "m"):
		v *= 1_000_000
	case strings.Contains(lower, "thousand") || strings.Contains(lower, "k"):
		v *= 1_000
	}
	return v, true
}

func parseCloseDate(s string) (time.Time, bool) {
	for _, layout := range closeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferTitle falls back to the first early line that reads like a deal
// title.
func inferTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 10 || len(line) >= 100 || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)
		for _, w := range titleWords {
			if strings.Contains(lower, w) {
				if len(line) > 80 {
					line = line[:80]
				}
				return line
			}
		}
	}
	return defaultName
}

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
