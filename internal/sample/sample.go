package sample

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

const (
	DefaultSize = 30
	DefaultSeed = 42
)

// TemplateHeader is the manual annotation layout. The last three columns are
// left blank for the annotators.
var TemplateHeader = []string{
	"Ano", "Artista", "Título", "Letra", "Pontuacao_manual", "Justificativa", "Referencia_criterio",
}

// Sample picks n songs that have lyrics. The choice depends only on the
// input order and seed, so repeated calls return the same songs in the same
// order.
func Sample(songs []dataset.Song, n int, seed uint64) ([]dataset.Song, error) {
	var valid []dataset.Song
	for _, s := range songs {
		if s.HasLyrics() {
			valid = append(valid, s)
		}
	}
	if n < 0 || n > len(valid) {
		return nil, fmt.Errorf("cannot sample %d songs from %d with lyrics", n, len(valid))
	}

	r := rand.New(rand.NewPCG(seed, seed))
	perm := r.Perm(len(valid))
	picked := make([]dataset.Song, n)
	for i := 0; i < n; i++ {
		picked[i] = valid[perm[i]]
	}
	return picked, nil
}

// Template builds the annotation table for the sampled songs.
func Template(songs []dataset.Song) *dataset.Table {
	table := &dataset.Table{Header: append([]string(nil), TemplateHeader...)}
	for _, s := range songs {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(s.Year), s.Artist, s.Title, s.Lyrics, "", "", "",
		})
	}
	return table
}

// WriteTemplate samples n songs and writes the annotation template to path.
func WriteTemplate(path string, songs []dataset.Song, n int, seed uint64) ([]dataset.Song, error) {
	picked, err := Sample(songs, n, seed)
	if err != nil {
		return nil, err
	}
	if err := Template(picked).WriteFile(path); err != nil {
		return nil, err
	}
	return picked, nil
}
