package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

var (
	ErrEmptyResponse   = errors.New("empty model response")
	ErrInvalidResponse = errors.New("invalid model response")
)

// ParseSource records which parsing strategy produced a Response.
type ParseSource int

const (
	SourceLines ParseSource = iota
	SourceJSON
	SourceEmbeddedJSON
)

func (s ParseSource) String() string {
	switch s {
	case SourceJSON:
		return "json"
	case SourceEmbeddedJSON:
		return "embedded json"
	default:
		return "lines"
	}
}

// Response is a parsed model reply. Flags follow the order of the profile's
// flag names.
type Response struct {
	Level         toxicity.Level
	Score         float64
	Flags         []bool
	Justification string
	Source        ParseSource
}

// Field names accepted in replies, after normalizeKey.
var (
	levelKeys         = []string{"nivel_de_toxicidade", "nivel_toxicidade", "nivel", "toxicidade", "toxicity_level", "level"}
	scoreKeys         = []string{"score", "pontuacao"}
	justificationKeys = []string{"justificativa", "justification"}
)

var truthy = map[string]bool{
	"sim": true, "s": true, "yes": true, "y": true, "true": true, "verdadeiro": true, "1": true, "x": true,
}

func newResponse(p *Profile) Response {
	return Response{Level: toxicity.LevelNA, Flags: make([]bool, len(p.Flags))}
}

// ParseResponse extracts the fields of a model reply. It tries the whole
// reply as JSON, then the span between the first '{' and the last '}', and
// finally reads "field: value" lines. Fields that cannot be found keep their
// defaults: level "na", score 0 and every flag false.
func ParseResponse(raw string, p *Profile) Response {
	text := stripCodeFence(strings.TrimSpace(raw))
	if obj, ok := decodeObject(text); ok {
		return fromObject(obj, p, SourceJSON)
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if obj, ok := decodeObject(text[start : end+1]); ok {
				return fromObject(obj, p, SourceEmbeddedJSON)
			}
		}
	}
	return parseLines(text, p)
}

// Check reports whether r is acceptable under the profile's schema.
func Check(r Response, p *Profile) error {
	switch p.Schema {
	case SchemaLevel:
		if _, ok := toxicity.ParseLevel(string(r.Level)); !ok {
			return fmt.Errorf("%w: unknown level %q", ErrInvalidResponse, r.Level)
		}
		if r.Level != toxicity.LevelNA && strings.TrimSpace(r.Justification) == "" {
			return fmt.Errorf("%w: level %q without justification", ErrInvalidResponse, r.Level)
		}
	case SchemaScore:
		if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
			return fmt.Errorf("%w: score %v outside [0, 1]", ErrInvalidResponse, r.Score)
		}
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func fromObject(obj map[string]any, p *Profile, source ParseSource) Response {
	r := newResponse(p)
	r.Source = source
	for key, value := range obj {
		if value == nil {
			continue
		}
		k := normalizeKey(key)
		switch {
		case slices.Contains(levelKeys, k):
			r.Level = parseLevel(fmt.Sprint(value))
		case slices.Contains(scoreKeys, k):
			r.Score = toFloat(value)
		case slices.Contains(justificationKeys, k):
			if s, ok := value.(string); ok {
				r.Justification = strings.TrimSpace(s)
			} else {
				r.Justification = fmt.Sprint(value)
			}
		default:
			if i := flagIndex(p, k); i >= 0 {
				r.Flags[i] = toBool(value)
			}
		}
	}
	return r
}

func parseLines(text string, p *Profile) Response {
	r := newResponse(p)
	var justification []string
	inJustification := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if inJustification {
			if line != "" {
				justification = append(justification, line)
			}
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		k := normalizeKey(strings.Trim(line[:colon], "-*•#>\"' \t"))
		value := cleanValue(line[colon+1:])
		switch {
		case slices.Contains(levelKeys, k):
			r.Level = parseLevel(value)
		case slices.Contains(scoreKeys, k):
			r.Score = parseScore(firstToken(value))
		case slices.Contains(justificationKeys, k):
			inJustification = true
			if value != "" {
				justification = append(justification, value)
			}
		default:
			if i := flagIndex(p, k); i >= 0 {
				r.Flags[i] = truthy[firstToken(dataset.Fold(value))]
			}
		}
	}
	r.Justification = strings.Join(justification, " ")
	return r
}

// normalizeKey folds a field name so "Nível de toxicidade" and
// "nivel_de_toxicidade" compare equal.
func normalizeKey(s string) string {
	s = strings.ReplaceAll(dataset.Fold(s), "-", " ")
	return strings.Join(strings.Fields(s), "_")
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	return strings.Trim(s, "*\"' \t")
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,;!\"'*")
}

// parseLevel canonicalises known levels and keeps anything else as given,
// so validation can reject it.
func parseLevel(s string) toxicity.Level {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	if l, ok := toxicity.ParseLevel(strings.Join(strings.Fields(dataset.Fold(s)), " ")); ok {
		return l
	}
	return toxicity.Level(s)
}

func flagIndex(p *Profile, key string) int {
	for i, f := range p.Flags {
		if normalizeKey(f) == key {
			return i
		}
	}
	return -1
}

func toBool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return truthy[firstToken(dataset.Fold(v))]
	}
	return false
}

// parseScore reads a numeric score. Unparseable and non-finite values count
// as missing.
func parseScore(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case string:
		return parseScore(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}
