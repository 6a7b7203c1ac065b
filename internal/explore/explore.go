package explore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot/plotter"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

// Chart file names written under the figures directory.
const (
	FigureTemporal       = "distribuicao_temporal.png"
	FigureLyricLength    = "tamanho_letras.png"
	FigureSensitiveTerms = "evolucao_termos_sensiveis.png"
	FigureFrequentWords  = "palavras_frequentes.png"
)

const (
	temporalBins    = 64
	lyricLengthBins = 50
	defaultTopWords = 20
)

type Config struct {
	FiguresDir string
	Out        io.Writer
	Logger     *zap.Logger

	// TopWords is the size of the frequent-word ranking. Defaults to 20.
	TopWords int

	// Categories defaults to SensitiveCategories.
	Categories []Category

	// Stopwords defaults to DefaultStopwords().
	Stopwords map[string]bool
}

// Step is one independent analysis over the dataset.
type Step struct {
	Name string
	Run  func(ds *dataset.Dataset) error
}

type Pipeline struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config) *Pipeline {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.TopWords <= 0 {
		cfg.TopWords = defaultTopWords
	}
	if cfg.Categories == nil {
		cfg.Categories = SensitiveCategories
	}
	if cfg.Stopwords == nil {
		cfg.Stopwords = DefaultStopwords()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

func (p *Pipeline) Steps() []Step {
	return []Step{
		{Name: "análise básica", Run: p.BasicStats},
		{Name: "análise temporal", Run: p.Temporal},
		{Name: "análise do tamanho das letras", Run: p.LyricLength},
		{Name: "análise de termos sensíveis", Run: p.SensitiveTerms},
		{Name: "análise de palavras frequentes", Run: p.FrequentWords},
	}
}

// Run executes every step. A failing step is reported and the remaining
// steps still run; the returned error joins all step failures.
func (p *Pipeline) Run(ds *dataset.Dataset) error {
	if err := os.MkdirAll(p.cfg.FiguresDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", p.cfg.FiguresDir, err)
	}

	var errs []error
	for _, step := range p.Steps() {
		if err := p.runStep(step, ds); err != nil {
			fmt.Fprintf(p.cfg.Out, "Erro na %s: %v\n", step.Name, err)
			p.logger.Error("analysis step failed", zap.String("step", step.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) runStep(step Step, ds *dataset.Dataset) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	p.logger.Debug("running analysis step", zap.String("step", step.Name))
	return step.Run(ds)
}

func (p *Pipeline) figure(name string) string {
	return filepath.Join(p.cfg.FiguresDir, name)
}

func (p *Pipeline) BasicStats(ds *dataset.Dataset) error {
	return PrintBasicStats(p.cfg.Out, ds.Table.Header, ComputeBasicStats(ds.Table))
}

func (p *Pipeline) Temporal(ds *dataset.Dataset) error {
	years := make([]float64, len(ds.Songs))
	for i, s := range ds.Songs {
		years[i] = float64(s.Year)
	}
	return saveHistogram(p.figure(FigureTemporal), chartLabels{
		Title:  "Distribuição de Músicas por Ano (1959-2023)",
		XLabel: "Ano",
		YLabel: "Quantidade de Músicas",
	}, years, temporalBins)
}

func (p *Pipeline) LyricLength(ds *dataset.Dataset) error {
	lyrics := make([]string, len(ds.Songs))
	for i, s := range ds.Songs {
		lyrics[i] = s.Lyrics
	}
	return saveHistogram(p.figure(FigureLyricLength), chartLabels{
		Title:  "Distribuição do Tamanho das Letras (Número de Palavras)",
		XLabel: "Número de Palavras",
		YLabel: "Frequência",
	}, WordLengths(lyrics), lyricLengthBins)
}

func (p *Pipeline) SensitiveTerms(ds *dataset.Dataset) error {
	caser := cases.Title(language.BrazilianPortuguese)
	series := make([]lineSeries, 0, len(p.cfg.Categories))
	for _, category := range p.cfg.Categories {
		means := YearlyTermMeans(ds.Songs, NewTermMatcher(category.Terms))
		points := make(plotter.XYs, len(means))
		for i, m := range means {
			points[i].X = float64(m.Year)
			points[i].Y = m.Mean
		}
		series = append(series, lineSeries{Name: caser.String(category.Name), Points: points})
	}

	err := saveLines(p.figure(FigureSensitiveTerms), chartLabels{
		Title:  "Evolução da Frequência de Termos Sensíveis (1959–2023)",
		XLabel: "Ano",
		YLabel: "Frequência Média por Letra",
	}, series)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.cfg.Out, "Análise de termos sensíveis concluída com sucesso!")
	return nil
}

func (p *Pipeline) FrequentWords(ds *dataset.Dataset) error {
	lyrics := make([]string, 0, len(ds.Songs))
	for _, s := range ds.Songs {
		if s.HasLyrics() {
			lyrics = append(lyrics, s.Lyrics)
		}
	}
	top := TopWords(lyrics, p.cfg.TopWords, p.cfg.Stopwords)
	if len(top) == 0 {
		return errNoData
	}

	names := make([]string, len(top))
	counts := make([]float64, len(top))
	for i, w := range top {
		names[i] = w.Word
		counts[i] = float64(w.Count)
	}
	err := saveHorizontalBars(p.figure(FigureFrequentWords), chartLabels{
		Title:  fmt.Sprintf("%d Palavras Mais Frequentes nas Letras", p.cfg.TopWords),
		XLabel: "Frequência",
		YLabel: "Palavra",
	}, names, counts)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.cfg.Out, "\n=== Palavras Mais Frequentes ===")
	for _, w := range top {
		fmt.Fprintf(p.cfg.Out, "%s: %d\n", w.Word, w.Count)
	}
	return nil
}
