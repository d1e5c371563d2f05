// Package history loads the historical deal corpus used for comparative
// benchmarking. Deals come from a structured JSON file, a folder of plain
// text deal documents, or both; when neither yields anything a single
// built-in sample keeps the comparative stage functional.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/model"
)

// maxPromptDeals caps how many historical deals are handed to the
// comparative prompt.
const maxPromptDeals = 15

// Loader reads historical deals from configured locations.
type Loader struct {
	jsonPath string
	dealsDir string
	log      *zap.Logger
}

func NewLoader(jsonPath, dealsDir string) *Loader {
	return &Loader{
		jsonPath: jsonPath,
		dealsDir: dealsDir,
		log:      zap.L().With(zap.String("component", "history")),
	}
}

// Load gathers deals from every configured source. Unreadable sources are
// logged and skipped; the sample deal is returned only when every source
// came up empty.
func (l *Loader) Load() []model.HistoricalDeal {
	var deals []model.HistoricalDeal

	if l.jsonPath != "" {
		fromJSON, err := l.loadJSON()
		if err != nil {
			l.log.Warn("historical deals json unreadable",
				zap.String("path", l.jsonPath), zap.Error(err))
		}
		deals = append(deals, fromJSON...)
	}

	if l.dealsDir != "" {
		deals = append(deals, l.loadFolder()...)
	}

	if len(deals) == 0 {
		return []model.HistoricalDeal{sampleDeal()}
	}

	l.log.Debug("historical deals loaded", zap.Int("count", len(deals)))
	return deals
}

// PromptSubset returns at most maxPromptDeals entries for prompt assembly.
func PromptSubset(deals []model.HistoricalDeal) []model.HistoricalDeal {
	if len(deals) > maxPromptDeals {
		return deals[:maxPromptDeals]
	}
	return deals
}

func (l *Loader) loadJSON() ([]model.HistoricalDeal, error) {
	raw, err := os.ReadFile(l.jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "history: read json corpus")
	}
	var deals []model.HistoricalDeal
	if err := json.Unmarshal(raw, &deals); err != nil {
		return nil, eris.Wrap(err, "history: parse json corpus")
	}
	return deals, nil
}

func (l *Loader) loadFolder() []model.HistoricalDeal {
	pattern := filepath.Join(l.dealsDir, "*.txt")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		l.log.Warn("deals folder glob failed", zap.String("pattern", pattern), zap.Error(err))
		return nil
	}

	var deals []model.HistoricalDeal
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("deal file unreadable", zap.String("path", path), zap.Error(err))
			continue
		}
		deals = append(deals, ParseDealFile(string(raw), filepath.Base(path)))
	}
	return deals
}

var moneyRe = regexp.MustCompile(`\$?[\d,]+`)

// ParseDealFile extracts a structured historical deal from a plain text
// deal document. Header fields are searched near the top of the file;
// competitor risk is bumped by competitive language anywhere in the body.
func ParseDealFile(content, filename string) model.HistoricalDeal {
	deal := model.HistoricalDeal{
		DealName:          "Unknown Deal",
		Industry:          "General",
		PrimaryLossReason: "See deal document",
		TimelineScore:     5.0,
		CompetitorRisk:    0.5,
		SourceFile:        filename,
	}

	lines := strings.Split(content, "\n")

	for _, line := range headLines(lines, 10) {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "deal name") || strings.Contains(lower, "deal:") {
			if _, val, ok := splitColon(line); ok && val != "" {
				deal.DealName = val
				break
			}
		}
	}

	for _, line := range headLines(lines, 15) {
		if strings.Contains(strings.ToLower(line), "industry") {
			if _, val, ok := splitColon(line); ok && val != "" {
				deal.Industry = val
				break
			}
		}
	}

	for _, line := range headLines(lines, 20) {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "value") && strings.Contains(line, "$") {
			if m := moneyRe.FindString(line); m != "" {
				cleaned := strings.NewReplacer("$", "", ",", "").Replace(m)
				if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
					deal.Value = v
				}
			}
			break
		}
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "competitor") || strings.Contains(lower, "alternative vendor") {
		deal.CompetitorRisk = 0.7
	}
	if strings.Contains(lower, "lost to") {
		deal.CompetitorRisk = 0.8
	}

	for _, line := range lines {
		l := strings.ToLower(line)
		if strings.Contains(l, "loss") || strings.Contains(l, "reason") || strings.Contains(l, "blocker") {
			trimmed := strings.TrimSpace(line)
			if len(trimmed) > 20 {
				if len(trimmed) > 200 {
					trimmed = trimmed[:200]
				}
				deal.PrimaryLossReason = trimmed
				break
			}
		}
	}

	return deal
}

func sampleDeal() model.HistoricalDeal {
	return model.HistoricalDeal{
		DealName:          "Sample SaaS Renewal",
		Industry:          "Software",
		Value:             185000,
		PrimaryLossReason: "Pricing gap vs incumbent",
		TimelineScore:     6.2,
		CompetitorRisk:    0.7,
	}
}

func headLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func splitColon(line string) (key, val string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
