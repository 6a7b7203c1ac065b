package explore

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

// Category is a named list of sensitive terms.
type Category struct {
	Name  string
	Terms []string
}

// SensitiveCategories are the curated keyword lists searched for in lyrics.
// The lists are deliberately broad (they include ordinary words such as
// "boy" or "war") and are meant for trend lines, not moderation decisions.
var SensitiveCategories = []Category{
	{
		Name: "racismo",
		Terms: []string{
			"nigger", "nigga", "coon", "spic", "wetback", "chink", "gook", "kike", "spook", "wop",
			"jungle bunny", "porch monkey", "sambo", "pickaninny", "tar baby",
			"redskin", "towelhead", "sand nigger", "camel jockey", "oreo",
			"darkie", "half-breed", "injun", "boy", "yellow", "mulatto", "negroid", "ape",
			"colored", "negro", "monkey", "spear chucker", "uncle tom",
		},
	},
	{
		Name: "homofobia",
		Terms: []string{
			"fag", "faggot", "dyke", "queer", "homo", "fairy", "butch", "tranny",
			"no homo", "sissy", "pillow biter", "bender", "fruitcake", "fudge packer",
			"he-she", "ladyboy", "gender bender", "nancy boy", "manlover", "fenboy",
			"fagboy", "fagboyz",
			"limp wrist", "light in the loafers", "pansy", "poof", "poofter", "nelly",
			"flamer", "queen", "switch hitter", "shemale", "invert",
		},
	},
	{
		Name: "discurso_odio",
		Terms: []string{
			"hate", "kill", "death", "murder", "blood", "war", "fight", "enemy",
			"shoot", "stab", "explode", "terrorist", "bomb", "massacre",
			"annihilate", "burn", "genocide", "lynch", "torture", "rape",
			"riot", "slaughter", "execute", "hang", "pistol", "bullet",
			"rage", "beatdown", "warzone", "snipe", "trigger", "reload", "strangle",
		},
	},
	{
		Name: "preconceito",
		Terms: []string{
			"stupid", "dumb", "ugly", "fat", "lazy", "crazy", "retard", "whore", "slut",
			"bitch", "hoe", "loser", "idiot", "moron", "psycho", "bastard",
			"cunt", "skank", "airhead", "gold digger", "pig", "slob",
			"twat", "tramp", "hag", "freak", "cripple", "lame",
			"bimbo", "nutcase", "loony", "simpleton", "ditz", "clown", "trollop",
			"nitwit", "mutt", "cow", "dog", "fatso", "minger", "uggo", "whaleboy",
		},
	},
}

// TermMatcher counts whole-word, case-insensitive occurrences of a term list.
type TermMatcher struct {
	patterns []*regexp.Regexp
}

func NewTermMatcher(terms []string) *TermMatcher {
	m := &TermMatcher{patterns: make([]*regexp.Regexp, 0, len(terms))}
	for _, term := range terms {
		m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(term))+`\b`))
	}
	return m
}

// Count returns the number of matches of every term in text. "kill" matches
// twice in "kill and kill again" and never inside "skillful".
func (m *TermMatcher) Count(text string) int {
	text = strings.ToLower(text)
	total := 0
	for _, p := range m.patterns {
		total += len(p.FindAllStringIndex(text, -1))
	}
	return total
}

// YearlyMean is the average per-lyric term count for one year.
type YearlyMean struct {
	Year int
	Mean float64
}

// YearlyTermMeans averages the per-song count of the matcher's terms by
// year. Songs without lyrics count as zero matches.
func YearlyTermMeans(songs []dataset.Song, m *TermMatcher) []YearlyMean {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, song := range songs {
		sums[song.Year] += float64(m.Count(song.Lyrics))
		counts[song.Year]++
	}

	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Ints(years)

	means := make([]YearlyMean, 0, len(years))
	for _, year := range years {
		means = append(means, YearlyMean{Year: year, Mean: sums[year] / float64(counts[year])})
	}
	return means
}
