package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractJSON returns the first balanced JSON object found in text.
// Models frequently wrap their JSON answer in prose or markdown fences;
// this strips all of that.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", eris.New("anthropic: no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}
	return "", eris.New("anthropic: unbalanced JSON object in response")
}

// DecodeJSON extracts the first JSON object from a response and unmarshals
// it into out.
func DecodeJSON(resp *MessageResponse, out any) error {
	raw, err := ExtractJSON(resp.Text())
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return eris.Wrap(err, "anthropic: decode response JSON")
	}
	return nil
}
