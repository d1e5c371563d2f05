package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/model"
	"github.com/sells-group/deal-forensics/internal/resilience"
	"github.com/sells-group/deal-forensics/pkg/anthropic"
)

// Section minimums and caps for the four playbook lists.
const (
	minRootCauses      = 6
	minRedFlags        = 6
	minRecommendations = 8
	minBestPractices   = 6

	maxRootCauses      = 10
	maxRedFlags        = 10
	maxRecommendations = 12
	maxBestPractices   = 10
)

const playbookPrompt = `You are an expert revenue operations strategist and sales excellence consultant with deep experience in deal post-mortems.

CRITICAL: You MUST analyze the ACTUAL DEAL DOCUMENT provided and generate document-specific insights. DO NOT use generic responses.

Your task: Analyze THIS SPECIFIC deal failure and create a HIGHLY ACTIONABLE recovery playbook based on what actually happened in THIS deal.

Produce:

1. WHAT WENT WRONG (Root Causes) - EXACTLY 6-10 specific points: pricing
   renegotiations, communication breakdowns, delivery delays, competitor
   mentions. Mention actual amounts, dates, and competitors from the document.
2. RED FLAGS (Warning Signs) - EXACTLY 6-10 strong warnings: verbal-only
   agreements, vague timelines ("Q2", "sometime"), missing warranty terms,
   undefined penalties.
3. RECOMMENDATIONS (Short-Term Action Plan) - EXACTLY 8-12 actionable items,
   each addressing a SPECIFIC issue from THIS deal, with priority
   (High/Med/Low), impact (1-10), and owner.
4. BEST PRACTICES (Long-Term Improvements) - EXACTLY 6-10 process
   improvements based on patterns found in THIS deal.

Return JSON with these EXACT keys:
{
  "what_went_wrong": ["specific root cause from document", ...],
  "red_flags": ["specific red flag from document", ...],
  "recommendations": [
    {"priority": "High/Med/Low", "action": "...", "impact": 1-10, "owner": "Sales Rep/Sales Manager/Product Team"}
  ],
  "best_practices": ["best practice", ...]
}

REMEMBER: All insights MUST be based on the actual deal document content. Be specific, not generic.`

// playbookPayload tolerates recommendations arriving as objects or strings.
type playbookPayload struct {
	WhatWentWrong   []string          `json:"what_went_wrong"`
	RedFlags        []string          `json:"red_flags"`
	Recommendations []json.RawMessage `json:"recommendations"`
	BestPractices   []string          `json:"best_practices"`
}

// playbookStage produces the four-section recovery playbook. Never fails:
// LLM errors degrade to the document-mined fallback.
func (p *Pipeline) playbookStage(ctx context.Context, document, dealSummary string, tl model.Timeline, cmp model.Comparative) (model.Playbook, model.TokenUsage) {
	insights := extractDocumentInsights(document)

	req := anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.SonnetModel,
		MaxTokens: int64(p.cfg.Anthropic.MaxTokens),
		System:    anthropic.BuildCachedSystemBlocks(playbookPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPlaybookContext(document, dealSummary, tl, cmp)},
		},
	}

	resp, err := resilience.DoVal(ctx, p.retry.ForCall("anthropic", "playbook"), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.ai.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("playbook: generation call failed, using mined fallback", zap.Error(err))
		return fallbackPlaybook(insights, tl, cmp, document), model.TokenUsage{}
	}

	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         resp.Usage.EstimateCost(p.cfg.Anthropic.SonnetModel),
	}
	resp.Usage.LogCost(p.cfg.Anthropic.SonnetModel, "playbook")

	var payload playbookPayload
	if decodeErr := anthropic.DecodeJSON(resp, &payload); decodeErr != nil {
		zap.L().Warn("playbook: malformed payload, using mined fallback", zap.Error(decodeErr))
		return fallbackPlaybook(insights, tl, cmp, document), usage
	}

	pb := model.Playbook{
		WhatWentWrong:   payload.WhatWentWrong,
		RedFlags:        payload.RedFlags,
		Recommendations: decodeRecommendations(payload.Recommendations),
		BestPractices:   payload.BestPractices,
	}
	return assemblePlaybook(pb, insights, tl, cmp, document), usage
}

func buildPlaybookContext(document, dealSummary string, tl model.Timeline, cmp model.Comparative) string {
	timelineJSON, _ := json.Marshal(tl)
	comparativeJSON, _ := json.Marshal(cmp)

	doc := document
	if doc == "" {
		doc = dealSummary
	}

	var b strings.Builder
	b.WriteString("DEAL DOCUMENT CONTENT:\n")
	b.WriteString(truncate(doc, 6000))
	b.WriteString("\n\nTIMELINE ANALYSIS:\n")
	b.WriteString(truncate(string(timelineJSON), 4000))
	b.WriteString("\n\nCOMPARATIVE INSIGHTS:\n")
	b.WriteString(truncate(string(comparativeJSON), 4000))
	b.WriteString("\n\nDEAL SUMMARY:\n")
	b.WriteString(truncate(dealSummary, 2000))
	return b.String()
}

// decodeRecommendations accepts both object and bare-string entries.
func decodeRecommendations(raws []json.RawMessage) []model.Recommendation {
	var out []model.Recommendation
	for _, raw := range raws {
		var rec model.Recommendation
		if err := json.Unmarshal(raw, &rec); err == nil {
			if rec.Priority == "" {
				rec.Priority = "Med"
			}
			if rec.Action == "" {
				rec.Action = "Review deal process"
			}
			if rec.Impact == 0 {
				rec.Impact = 5
			}
			if rec.Owner == "" {
				rec.Owner = "Sales Rep"
			}
			out = append(out, rec)
			continue
		}
		var action string
		if err := json.Unmarshal(raw, &action); err == nil && action != "" {
			out = append(out, model.Recommendation{
				Priority: "Med",
				Action:   action,
				Impact:   6,
				Owner:    "Sales Rep",
			})
		}
	}
	return out
}

// assemblePlaybook merges mined insights, tops each section up to its
// minimum, dedupes in order, and applies the caps.
func assemblePlaybook(pb model.Playbook, insights documentInsights, tl model.Timeline, cmp model.Comparative, document string) model.Playbook {
	pb.WhatWentWrong = append(pb.WhatWentWrong, insights.WhatWentWrong...)
	if len(pb.WhatWentWrong) < minRootCauses {
		pb.WhatWentWrong = append(pb.WhatWentWrong, generateRootCauses(tl, cmp, document)...)
	}
	if len(pb.WhatWentWrong) < minRootCauses {
		pb.WhatWentWrong = append(pb.WhatWentWrong, defaultWhatWentWrong()...)
	}
	pb.WhatWentWrong = dedupe(pb.WhatWentWrong, maxRootCauses)

	pb.RedFlags = append(pb.RedFlags, insights.RedFlags...)
	if len(pb.RedFlags) < minRedFlags {
		pb.RedFlags = append(pb.RedFlags, generateRedFlags(tl, cmp, document)...)
	}
	if len(pb.RedFlags) < minRedFlags {
		pb.RedFlags = append(pb.RedFlags, defaultRedFlags()...)
	}
	pb.RedFlags = dedupe(pb.RedFlags, maxRedFlags)

	pb.Recommendations = append(pb.Recommendations, insights.Recommendations...)
	if len(pb.Recommendations) < minRecommendations {
		pb.Recommendations = append(pb.Recommendations, generateRecommendations(tl, cmp, document)...)
	}
	if len(pb.Recommendations) < minRecommendations {
		pb.Recommendations = append(pb.Recommendations, defaultRecommendations()...)
	}
	pb.Recommendations = dedupeRecommendations(pb.Recommendations, maxRecommendations)

	pb.BestPractices = append(pb.BestPractices, insights.BestPractices...)
	if len(pb.BestPractices) < minBestPractices {
		pb.BestPractices = append(pb.BestPractices, generateBestPractices(document)...)
	}
	pb.BestPractices = dedupe(pb.BestPractices, maxBestPractices)

	return pb
}

// fallbackPlaybook builds the entire playbook deterministically from the
// document and prior stage outputs.
func fallbackPlaybook(insights documentInsights, tl model.Timeline, cmp model.Comparative, document string) model.Playbook {
	pb := model.Playbook{
		WhatWentWrong:   append(insights.WhatWentWrong, generateRootCauses(tl, cmp, document)...),
		RedFlags:        append(insights.RedFlags, generateRedFlags(tl, cmp, document)...),
		Recommendations: append(insights.Recommendations, generateRecommendations(tl, cmp, document)...),
		BestPractices:   append(insights.BestPractices, generateBestPractices(document)...),
	}
	pb.WhatWentWrong = dedupe(append(pb.WhatWentWrong, defaultWhatWentWrong()...), maxRootCauses)
	pb.RedFlags = dedupe(append(pb.RedFlags, defaultRedFlags()...), maxRedFlags)
	pb.Recommendations = dedupeRecommendations(append(pb.Recommendations, defaultRecommendations()...), maxRecommendations)
	pb.BestPractices = dedupe(pb.BestPractices, maxBestPractices)
	return pb
}

// documentInsights holds findings mined directly from the document text.
type documentInsights struct {
	WhatWentWrong   []string
	RedFlags        []string
	Recommendations []model.Recommendation
	BestPractices   []string
}

var (
	pricingMentionRe = regexp.MustCompile(`\bpricing\b|\bprice\b|\bbudget\b|\bcost\b`)
	priceAmountRe    = regexp.MustCompile(`(?i)\$[\d,]+|\d+[\d,]*\s*(?:k|thousand|million)`)
	gapAmountRe      = regexp.MustCompile(`(?i)gap[:\s]+(\$?[\d,]+|\d+%)`)
	delayDurationRe  = regexp.MustCompile(`delay(?:ed)?\s+(?:of|for)?\s*(\d+\s*(?:days?|weeks?|months?))`)

	competitorRes = []*regexp.Regexp{
		regexp.MustCompile(`lost to ([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
		regexp.MustCompile(`(?i)competitor[:\s]+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
		regexp.MustCompile(`(?i)alternative vendor[:\s]+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
		regexp.MustCompile(`([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})\s+(?:Solutions|Systems|Technologies|Corp|Inc|LLC|Ltd)`),
	}
	competitorNoiseRe = regexp.MustCompile(`(?i)\b(was|is|the|a|an|vendor|solution|company|due|to|pricing|concerns|and|delivery|timeline)\b`)

	vagueDateHints = []string{"q1", "q2", "q3", "q4", "sometime", "flexible", "tbd", "to be determined"}
)

// extractDocumentInsights mines deal-specific findings from raw text.
func extractDocumentInsights(document string) documentInsights {
	var insights documentInsights
	if document == "" {
		return insights
	}
	docLower := strings.ToLower(document)

	// Pricing churn.
	if mentions := len(pricingMentionRe.FindAllString(docLower, -1)); mentions > 2 {
		context := ""
		if amounts := priceAmountRe.FindAllString(document, 3); len(amounts) > 0 {
			context = " (pricing discussed: " + strings.Join(amounts, ", ") + ")"
		}
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Pricing was discussed repeatedly indicating unclear initial pricing requirements"+context)
		insights.RedFlags = append(insights.RedFlags,
			"Multiple pricing discussions without written confirmation")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "High",
			Action:   "Implement budget qualification checklist in discovery phase to avoid pricing renegotiations",
			Impact:   9,
			Owner:    "Sales Rep",
		})
	}

	// Explicit pricing gap.
	if strings.Contains(docLower, "pricing gap") || strings.Contains(docLower, "budget gap") {
		gapInfo := ""
		if m := gapAmountRe.FindStringSubmatch(document); m != nil {
			gapInfo = " (" + m[1] + ")"
		}
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Significant pricing gap between proposal and customer budget"+gapInfo)
		insights.RedFlags = append(insights.RedFlags,
			"Budget constraints not properly qualified early in sales cycle")
	}

	// Competitor pressure.
	competitor := findCompetitorName(document)
	if competitor != "" || strings.Contains(docLower, "competitor") {
		name := competitor
		if name == "" {
			name = "a competitor"
		}
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Competitive pressure from "+name+" not addressed early enough")
		insights.RedFlags = append(insights.RedFlags,
			"Competitor "+name+" explicitly mentioned during negotiations")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "High",
			Action:   "Create competitive differentiation matrix to address " + name + " early in sales cycle",
			Impact:   8,
			Owner:    "Sales Manager",
		})
	}

	// Delivery and timeline trouble.
	if strings.Contains(docLower, "delay") || strings.Contains(docLower, "timeline") || strings.Contains(docLower, "delivery") {
		if containsAny(docLower, vagueDateHints) || strings.Contains(docLower, "vague") {
			insights.WhatWentWrong = append(insights.WhatWentWrong,
				"Vague delivery timeline expectations led to misalignment")
			insights.RedFlags = append(insights.RedFlags,
				"Delivery timeline mentioned without specific dates")
			insights.Recommendations = append(insights.Recommendations, model.Recommendation{
				Priority: "Med",
				Action:   "Define delivery timeline with specific dates and penalty clauses",
				Impact:   7,
				Owner:    "Sales Manager",
			})
		} else if strings.Contains(docLower, "delay") {
			delayInfo := ""
			if m := delayDurationRe.FindStringSubmatch(docLower); m != nil {
				delayInfo = " (" + m[1] + ")"
			}
			insights.WhatWentWrong = append(insights.WhatWentWrong,
				"Delivery delays occurred"+delayInfo)
			insights.RedFlags = append(insights.RedFlags,
				"Timeline delays indicate poor planning or resource allocation")
		}
	}

	// Communication breakdowns.
	if strings.Contains(docLower, "delayed response") || strings.Contains(docLower, "no response") || strings.Contains(docLower, "miscommunication") {
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Communication breakdown between sales and customer")
		insights.RedFlags = append(insights.RedFlags,
			"Delayed responses to critical questions")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "Med",
			Action:   "Establish regular check-in cadence to prevent communication delays",
			Impact:   7,
			Owner:    "Sales Rep",
		})
	}

	// Verbal-only commitments.
	if strings.Contains(docLower, "verbal") &&
		(strings.Contains(docLower, "agreement") || strings.Contains(docLower, "commitment") || strings.Contains(docLower, "discount")) {
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Verbal-only commitments without written confirmation")
		insights.RedFlags = append(insights.RedFlags,
			"Verbal agreements without written follow-up")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "High",
			Action:   "Require written confirmation for all verbal agreements within 24 hours",
			Impact:   8,
			Owner:    "Sales Rep",
		})
	}

	// Escalations.
	if strings.Contains(docLower, "escalation") || strings.Contains(docLower, "escalated") {
		insights.WhatWentWrong = append(insights.WhatWentWrong,
			"Multiple escalation phases indicate unresolved issues that should have been addressed earlier")
		insights.RedFlags = append(insights.RedFlags,
			"Issues escalated multiple times without resolution")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "Med",
			Action:   "Establish clear escalation paths and resolution processes before issues arise",
			Impact:   7,
			Owner:    "Sales Manager",
		})
	}

	// Missing contract protections.
	if !strings.Contains(docLower, "warranty") && !strings.Contains(docLower, "guarantee") {
		insights.RedFlags = append(insights.RedFlags,
			"Missing warranty or guarantee terms in deal documentation")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "Med",
			Action:   "Include warranty and guarantee terms in all proposals",
			Impact:   6,
			Owner:    "Sales Manager",
		})
	}
	if !strings.Contains(docLower, "penalty") && !strings.Contains(docLower, "consequence") {
		insights.RedFlags = append(insights.RedFlags,
			"No penalty clauses defined for delays or non-compliance")
		insights.Recommendations = append(insights.Recommendations, model.Recommendation{
			Priority: "Med",
			Action:   "Define penalty clauses for delays in all contracts",
			Impact:   6,
			Owner:    "Sales Manager",
		})
	}

	if containsAny(docLower, vagueDateHints) {
		insights.RedFlags = append(insights.RedFlags,
			"Vague timeline references instead of specific dates")
	}

	return insights
}

// findCompetitorName extracts a plausible competitor company name.
func findCompetitorName(document string) string {
	for _, re := range competitorRes {
		m := re.FindStringSubmatch(document)
		if m == nil {
			continue
		}
		name := competitorNoiseRe.ReplaceAllString(m[1], "")
		name = strings.Join(strings.Fields(name), " ")
		if len(name) > 30 {
			words := strings.Fields(name)
			if len(words) > 2 {
				words = words[:2]
			}
			name = strings.Join(words, " ")
		}
		if len(name) > 3 && len(name) <= 30 {
			return name
		}
	}
	return ""
}

func generateRootCauses(tl model.Timeline, cmp model.Comparative, document string) []string {
	var causes []string
	if cmp.PricingDelta > 0.5 {
		causes = append(causes, "Significant pricing gap between proposal and customer budget indicates unclear requirements gathering")
	}
	if cmp.CompetitorRisk > 0.6 {
		causes = append(causes, "High competitive pressure suggests insufficient differentiation or value communication")
	}
	if len(tl.Events) > 0 && tl.NegativeEventRatio() > 0.4 {
		causes = append(causes, "High proportion of negative sentiment events indicates communication or expectation misalignment")
	}
	if len(tl.EventsInPhase(model.PhaseEscalation)) > 0 {
		causes = append(causes, "Multiple escalation phases indicate unresolved issues that should have been addressed earlier")
	}
	if document != "" {
		docLower := strings.ToLower(document)
		if !strings.Contains(docLower, "warranty") && !strings.Contains(docLower, "guarantee") {
			causes = append(causes, "Missing warranty or guarantee terms in deal documentation")
		}
		if !strings.Contains(docLower, "written") || !strings.Contains(docLower, "documented") {
			causes = append(causes, "Insufficient written documentation throughout the deal process")
		}
	}
	return causes
}

func generateRedFlags(tl model.Timeline, cmp model.Comparative, document string) []string {
	var flags []string

	for _, e := range tl.Events {
		ts := strings.ToLower(e.Timestamp)
		if strings.Contains(ts, "week") || strings.Contains(ts, "month") {
			flags = append(flags, "Vague timeline references (weeks/months) instead of specific dates indicate planning uncertainty")
			break
		}
	}
	if len(tl.EventsInPhase(model.PhasePricing)) > 2 {
		flags = append(flags, "Multiple pricing discussions indicate unclear initial pricing or scope creep")
	}
	if len(tl.CommunicationEvents) > 0 {
		negative := 0
		for _, c := range tl.CommunicationEvents {
			if c.Sentiment == model.SentimentNegative {
				negative++
			}
		}
		if float64(negative) > float64(len(tl.CommunicationEvents))*0.3 {
			flags = append(flags, "High proportion of negative communication events suggests relationship deterioration")
		}
	}
	if document != "" {
		docLower := strings.ToLower(document)
		if strings.Contains(docLower, "customer said") || strings.Contains(docLower, "customer mentioned") {
			flags = append(flags, "Key information only mentioned verbally without written confirmation")
		}
		if strings.Contains(docLower, "tbd") || strings.Contains(docLower, "to be determined") {
			flags = append(flags, "Multiple 'to be determined' items indicate incomplete planning")
		}
		if strings.Contains(docLower, "discount") && strings.Contains(docLower, "verbal") {
			flags = append(flags, "Discounts mentioned verbally without written confirmation")
		}
	}
	return flags
}

func generateRecommendations(tl model.Timeline, cmp model.Comparative, document string) []model.Recommendation {
	var recs []model.Recommendation
	if cmp.PricingDelta > 0.5 {
		recs = append(recs, model.Recommendation{
			Priority: "High",
			Action:   "Implement budget qualification checklist in discovery phase",
			Impact:   9,
			Owner:    "Sales Rep",
		})
	}
	if cmp.CompetitorRisk > 0.6 {
		recs = append(recs, model.Recommendation{
			Priority: "High",
			Action:   "Create competitive differentiation matrix and share early in sales cycle",
			Impact:   8,
			Owner:    "Sales Manager",
		})
	}
	negative := 0
	for _, e := range tl.Events {
		if e.Sentiment == model.SentimentNegative {
			negative++
		}
	}
	if negative > 3 {
		recs = append(recs, model.Recommendation{
			Priority: "Med",
			Action:   "Establish regular check-in cadence to catch issues early",
			Impact:   7,
			Owner:    "Sales Rep",
		})
	}
	if document != "" {
		docLower := strings.ToLower(document)
		if strings.Contains(docLower, "discount") && strings.Contains(docLower, "verbal") {
			recs = append(recs, model.Recommendation{
				Priority: "High",
				Action:   "Require written confirmation for all discount discussions",
				Impact:   8,
				Owner:    "Sales Rep",
			})
		}
		if strings.Contains(docLower, "timeline") && (strings.Contains(docLower, "vague") || strings.Contains(docLower, "tbd")) {
			recs = append(recs, model.Recommendation{
				Priority: "Med",
				Action:   "Define specific delivery dates with penalty clauses",
				Impact:   7,
				Owner:    "Sales Manager",
			})
		}
	}
	return recs
}

func generateBestPractices(document string) []string {
	practices := []string{
		"Document all pricing discussions in CRM within 24 hours",
		"Require written confirmation for all verbal agreements",
		"Establish clear escalation paths before issues arise",
		"Conduct weekly deal reviews for deals over $200K",
		"Implement automated deal health scoring and alerts",
		"Create competitive battle cards for common competitors",
		"Establish standard pricing approval workflows",
		"Require technical validation before pricing commitment",
	}
	if document != "" {
		docLower := strings.ToLower(document)
		if !strings.Contains(docLower, "warranty") {
			practices = append(practices, "Include warranty and guarantee terms in all proposals")
		}
		if !strings.Contains(docLower, "penalty") {
			practices = append(practices, "Define penalty clauses for delays in all contracts")
		}
		if !strings.Contains(docLower, "crm") {
			practices = append(practices, "Use CRM to track all deal communications and agreements")
		}
	}
	return practices
}

func defaultWhatWentWrong() []string {
	return []string{
		"Pricing ambiguity led to multiple renegotiations",
		"Communication breakdown between sales and customer",
		"Competitive pressure not addressed early enough",
		"Delivery timeline expectations were misaligned",
		"Missing written confirmations for key agreements",
		"Budget qualification occurred too late in sales cycle",
		"Technical requirements not fully understood before pricing",
		"Executive sponsorship was not secured early enough",
	}
}

func defaultRedFlags() []string {
	return []string{
		"Multiple pricing discussions without written confirmation",
		"Vague timeline references instead of specific dates",
		"Customer mentioned evaluating alternatives",
		"Delayed responses to critical questions",
		"No documented approval process visible",
		"Verbal agreements without written follow-up",
		"Pricing negotiations stalled multiple times",
		"Competitor explicitly mentioned during negotiations",
	}
}

func defaultRecommendations() []model.Recommendation {
	return []model.Recommendation{
		{Priority: "High", Action: "Implement budget qualification in discovery phase", Impact: 9, Owner: "Sales Rep"},
		{Priority: "High", Action: "Send written summary after each pricing discussion", Impact: 8, Owner: "Sales Rep"},
		{Priority: "High", Action: "Create competitive differentiation matrix", Impact: 8, Owner: "Sales Manager"},
		{Priority: "High", Action: "Establish executive sponsorship early in sales cycle", Impact: 8, Owner: "Sales Manager"},
		{Priority: "Med", Action: "Establish regular check-in cadence", Impact: 7, Owner: "Sales Rep"},
		{Priority: "Med", Action: "Define warranty and penalty clauses early", Impact: 7, Owner: "Sales Manager"},
		{Priority: "Med", Action: "Conduct technical validation before pricing commitment", Impact: 7, Owner: "Sales Engineer"},
		{Priority: "Low", Action: "Document all verbal agreements in CRM", Impact: 6, Owner: "Sales Rep"},
	}
}

// dedupe removes duplicates preserving first occurrence, capped at limit.
func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

// dedupeRecommendations dedupes by action text, capped at limit.
func dedupeRecommendations(recs []model.Recommendation, limit int) []model.Recommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]model.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.Action == "" || seen[rec.Action] {
			continue
		}
		seen[rec.Action] = true
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
