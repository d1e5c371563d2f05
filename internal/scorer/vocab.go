package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Vocabulary holds the keyword lists driving every heuristic sub-score.
// Each list is matched case-insensitively as a substring; a hit counts once
// per keyword regardless of how often it recurs.
type Vocabulary struct {
	PricingAmbiguity []string `yaml:"pricing_ambiguity"`
	PricingClarity   []string `yaml:"pricing_clarity"`
	PricingRisk      []string `yaml:"pricing_risk"`

	CommunicationIssues []string `yaml:"communication_issues"`
	GoodCommunication   []string `yaml:"good_communication"`
	Escalation          []string `yaml:"escalation"`

	VerbalAgreement      []string `yaml:"verbal_agreement"`
	WrittenDocumentation []string `yaml:"written_documentation"`
	MissingDocumentation []string `yaml:"missing_documentation"`

	VagueTimeline    []string `yaml:"vague_timeline"`
	SpecificTimeline []string `yaml:"specific_timeline"`
	DeliveryIssues   []string `yaml:"delivery_issues"`
	Competitor       []string `yaml:"competitor"`
}

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		PricingAmbiguity: []string{
			"unclear", "to be determined", "tbd", "discuss later", "negotiable", "flexible",
			"pricing gap", "budget gap", "price too high", "too expensive", "out of budget",
			"renegotiate", "renegotiation", "counter offer", "price dispute",
		},
		PricingClarity: []string{
			"final price", "agreed price", "contract price", "signed price", "approved price",
			"pricing confirmed", "price agreed", "budget approved", "pricing locked",
		},
		PricingRisk: []string{
			"pricing issue", "price concern", "budget constraint", "cost overrun",
		},

		CommunicationIssues: []string{
			"delayed response", "no response", "miscommunication", "confusion", "unclear",
			"communication breakdown", "poor communication", "lack of communication",
			"silence", "unresponsive", "delayed reply", "no reply",
		},
		GoodCommunication: []string{
			"clear communication", "prompt response", "confirmed", "documented", "written",
			"quick response", "responsive", "regular updates", "transparent", "open communication",
		},
		Escalation: []string{
			"escalation", "escalated", "escalate", "escalating",
		},

		VerbalAgreement: []string{
			"verbal agreement", "verbal commitment", "said", "told", "mentioned",
		},
		WrittenDocumentation: []string{
			"written", "documented", "contract", "agreement", "signed", "confirmed in writing",
		},
		MissingDocumentation: []string{
			"missing", "not provided", "not received", "pending",
		},

		VagueTimeline: []string{
			"tbd", "to be determined", "flexible", "approximately", "around", "sometime",
			"tentative", "estimated", "roughly", "maybe", "possibly", "uncertain timeline",
		},
		SpecificTimeline: []string{
			"specific date", "exact timeline", "confirmed date", "signed timeline",
			"guaranteed timeline", "committed date", "firm deadline", "locked timeline",
		},
		DeliveryIssues: []string{
			"delay", "late", "behind schedule", "missed deadline", "timeline issue",
			"delivery delay", "implementation delay", "project delay", "schedule slip",
			"timeline concern", "delivery problem", "execution issue",
		},
		Competitor: []string{
			"competitor", "alternative vendor", "other solution", "competing",
		},
	}
}

// LoadVocabulary reads a YAML overrides file on top of the defaults. Only
// keys present in the file are replaced; everything else keeps its built-in
// list. An empty path returns the defaults unchanged.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return vocab, eris.Wrap(err, "scorer: read vocabulary overrides")
	}
	if err := yaml.Unmarshal(raw, &vocab); err != nil {
		return vocab, eris.Wrap(err, "scorer: parse vocabulary overrides")
	}
	return vocab, nil
}
