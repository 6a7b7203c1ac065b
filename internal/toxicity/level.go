package toxicity

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is an ordinal relationship-toxicity label.
type Level string

const (
	LevelNA         Level = "na"
	LevelMuitoBaixo Level = "muito baixo"
	LevelBaixo      Level = "baixo"
	LevelModerado   Level = "moderado"
	LevelAlto       Level = "alto"
	LevelMuitoAlto  Level = "muito alto"
)

// Levels lists every label from least to most severe.
var Levels = []Level{LevelNA, LevelMuitoBaixo, LevelBaixo, LevelModerado, LevelAlto, LevelMuitoAlto}

var scores = map[Level]float64{
	LevelNA:         0.0,
	LevelMuitoBaixo: 0.1,
	LevelBaixo:      0.2,
	LevelModerado:   0.3,
	LevelAlto:       0.8,
	LevelMuitoAlto:  1.0,
}

// ParseLevel matches s against the label set, ignoring case only.
// Surrounding or repeated whitespace makes the label unknown.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(s))
	_, ok := scores[l]
	return l, ok
}

// Score returns the numeric weight of the level, or 0 for unknown labels.
func (l Level) Score() float64 {
	return scores[l]
}

// Rank orders levels by severity; unknown labels rank -1.
func (l Level) Rank() int {
	for i, known := range Levels {
		if known == l {
			return i
		}
	}
	return -1
}

// Score maps a textual label to its numeric weight.
func Score(label string) (float64, error) {
	l, ok := ParseLevel(label)
	if !ok {
		return 0, &UnmappedValuesError{Values: []string{label}}
	}
	return l.Score(), nil
}

// FormatScore renders a score the way the datasets store them: always with
// a decimal point, so 0 is "0.0".
func FormatScore(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// UnmappedValuesError lists labels with no numeric mapping.
type UnmappedValuesError struct {
	Values []string
}

func (e *UnmappedValuesError) Error() string {
	return fmt.Sprintf("Foram encontrados valores de toxicidade sem mapeamento: %s", strings.Join(e.Values, ", "))
}
