/*
Copyright 2026 The lyrics-tools Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/ollama"
	"github.com/ademuri/lyrics-tools/internal/store"
)

const testSongsCSV = `Year,Lyrics,Song Title,Artist
1960,"I love the sunshine, the sun loves me",Sunny,Alpha
1961,,Instrumental,Beta
1962.0,"You are mine and only mine, I will watch you all the time",Mine,Gamma
1963,"Dance dance dance all night",Dance,Alpha
`

const naReply = `{"nivel_toxicidade": "na", "abuso_emocional": false, "ciume_possessividade": false, "dependencia": false, "objetificacao": false, "violencia_traicao": false, "justificativa": "nenhum elemento tóxico identificado"}`
const altoReply = `Nível de toxicidade: alto
ciume_possessividade: sim
Justificativa: trata posse
como amor.`

// fakeOllama answers altoReply for lyrics mentioning "mine" and naReply
// otherwise.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reply := naReply
		if strings.Contains(req.Prompt, "mine") {
			reply = altoReply
		}
		json.NewEncoder(w).Encode(ollama.GenerateResponse{Model: req.Model, Response: reply, Done: true})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClassifyRunAndExport(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs.csv")
	writeFile(t, songs, testSongsCSV)
	dbPath := filepath.Join(dir, "lyrics.db")
	results := filepath.Join(dir, "results")
	server := fakeOllama(t)

	var out bytes.Buffer
	opts := classifyOptions{
		Profile:         "v5-nivel",
		Examples:        filepath.Join(dir, "missing-examples.csv"),
		CheckpointEvery: 2,
		Endpoint:        server.URL,
	}
	if err := runClassify(context.Background(), &out, dbPath, results, songs, opts); err != nil {
		t.Fatalf("runClassify: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Modelo em uso: mistral:instruct", "Análise completa", "Total analisado: 3", "Ignoradas: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat(filepath.Join(results, "parcial_2.csv")); err != nil {
		t.Errorf("checkpoint not written: %v", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.Processed != 4 || run.Accepted != 3 || run.Skipped != 1 || run.Finished.IsZero() || run.CSVPath == "" {
		t.Errorf("run = %+v", run)
	}
	stored, err := s.GetClassifications(run.ID)
	if err != nil {
		t.Fatalf("GetClassifications: %v", err)
	}
	if len(stored) != 3 || stored[1].Level != "alto" || stored[1].Justification != "trata posse como amor." {
		t.Errorf("stored classifications = %+v", stored)
	}

	analysis, err := TopArtistsAnalyzer{}.SetConfig(AnalyserConfig{1}).GetResults(s, run)
	if err != nil {
		t.Fatalf("TopArtistsAnalyzer: %v", err)
	}
	if diff := cmp.Diff([][]string{{"Artist", "Songs", "Flagged", "Mean score"}, {"Gamma", "1", "1", "0.80"}}, analysis.results); diff != "" {
		t.Errorf("top artists mismatch (-want +got):\n%s", diff)
	}
	byYear, err := ByYearAnalyzer{}.GetResults(s, run)
	if err != nil {
		t.Fatalf("ByYearAnalyzer: %v", err)
	}
	if len(byYear.results) != 4 || byYear.results[2][0] != "1962" {
		t.Errorf("by year = %v", byYear.results)
	}
	s.Close()

	var listed bytes.Buffer
	if err := listRuns(&listed, dbPath); err != nil {
		t.Fatalf("listRuns: %v", err)
	}
	if !strings.Contains(listed.String(), run.ID[:8]) || !strings.Contains(listed.String(), "v5-nivel") {
		t.Errorf("runs listing missing run:\n%s", listed.String())
	}

	exportDir := filepath.Join(dir, "export")
	var exported bytes.Buffer
	if err := exportRun(&exported, dbPath, exportDir, run.ID[:8]); err != nil {
		t.Fatalf("exportRun: %v", err)
	}
	original, err := os.ReadFile(run.CSVPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	rewritten, err := os.ReadFile(filepath.Join(exportDir, "relacionamentos_toxicos_"+run.ID+".csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(original, rewritten) {
		t.Errorf("exported CSV differs from the run output:\n%s\nvs\n%s", original, rewritten)
	}
}

func TestClassifyLimitAndOffset(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs.csv")
	writeFile(t, songs, testSongsCSV)
	server := fakeOllama(t)

	var out bytes.Buffer
	opts := classifyOptions{Profile: "v5-nivel", Offset: 2, Limit: 1, Endpoint: server.URL}
	if err := runClassify(context.Background(), &out, filepath.Join(dir, "db"), filepath.Join(dir, "results"), songs, opts); err != nil {
		t.Fatalf("runClassify: %v", err)
	}
	if !strings.Contains(out.String(), "Analisando 1/1 - Mine") {
		t.Errorf("expected only the third song:\n%s", out.String())
	}
}

func TestClassifyWriteFailureFinishesRun(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs.csv")
	writeFile(t, songs, testSongsCSV)
	dbPath := filepath.Join(dir, "lyrics.db")
	results := filepath.Join(dir, "results")
	// A directory where the first checkpoint goes makes that write fail.
	if err := os.MkdirAll(filepath.Join(results, "parcial_2.csv"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	server := fakeOllama(t)

	opts := classifyOptions{Profile: "v5-nivel", CheckpointEvery: 2, Endpoint: server.URL}
	err := runClassify(context.Background(), &bytes.Buffer{}, dbPath, results, songs, opts)
	if err == nil || !strings.Contains(err.Error(), "writing checkpoint") {
		t.Fatalf("runClassify = %v, want checkpoint error", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()
	runs, err := s.ListRuns()
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns = %v, %v", runs, err)
	}
	run := runs[0]
	if run.Finished.IsZero() || run.Processed != 2 || run.Accepted != 1 || run.Skipped != 1 {
		t.Errorf("run = %+v, want finished with 2 processed, 1 accepted, 1 skipped", run)
	}
}

func TestClassifyRequiredExamplesMissing(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs.csv")
	writeFile(t, songs, testSongsCSV)

	opts := classifyOptions{
		Profile:          "v5-nivel",
		Examples:         filepath.Join(dir, "missing.csv"),
		ExamplesRequired: true,
	}
	err := runClassify(context.Background(), &bytes.Buffer{}, filepath.Join(dir, "db"), dir, songs, opts)
	if err == nil || !strings.Contains(err.Error(), "loading examples") {
		t.Fatalf("runClassify = %v, want examples error", err)
	}
}

func TestLoadExamplesUsedInPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manual.csv")
	writeFile(t, path, "Letra,Pontuação_manual,Justificativa\nyou belong to me,alto,posse\n")

	profile, err := loadClassifyProfile(classifyOptions{Profile: "v5-nivel"})
	if err != nil {
		t.Fatalf("loadClassifyProfile: %v", err)
	}
	examples, err := loadExamples(classifyOptions{Examples: path, ExamplesRequired: true}, profile)
	if err != nil {
		t.Fatalf("loadExamples: %v", err)
	}
	if diff := cmp.Diff([]dataset.ManualExample{{Lyrics: "you belong to me", Label: "alto", Justification: "posse"}}, examples); diff != "" {
		t.Errorf("examples mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectSongs(t *testing.T) {
	songs := make([]dataset.Song, 5)
	for i := range songs {
		songs[i].Index = i
	}
	got, err := selectSongs(songs, 1, 2)
	if err != nil || len(got) != 2 || got[0].Index != 1 {
		t.Errorf("selectSongs(1, 2) = %v, %v", got, err)
	}
	if got, _ := selectSongs(songs, 3, 0); len(got) != 2 {
		t.Errorf("selectSongs(3, 0) returned %d songs, want 2", len(got))
	}
	if _, err := selectSongs(songs, 6, 0); err == nil {
		t.Errorf("selectSongs past the end should fail")
	}
}

func TestClassifyRejectsNegativeFlags(t *testing.T) {
	saved := classifyOpts
	defer func() { classifyOpts = saved }()

	classifyOpts.Limit = -1
	if err := classifyCmd.PreRunE(classifyCmd, nil); err == nil {
		t.Errorf("negative --limit should be rejected")
	}
	classifyOpts.Limit = 0
	classifyOpts.Rate = -2
	if err := classifyCmd.PreRunE(classifyCmd, nil); err == nil {
		t.Errorf("negative --rate should be rejected")
	}
	classifyOpts.Rate = 0
	if err := classifyCmd.PreRunE(classifyCmd, nil); err != nil {
		t.Errorf("PreRunE = %v, want nil", err)
	}
}

func TestSampleAndExplore(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs.csv")
	writeFile(t, songs, testSongsCSV)

	var out bytes.Buffer
	template := filepath.Join(dir, "rotulos.csv")
	if err := writeSample(&out, songs, template, 2, 42); err != nil {
		t.Fatalf("writeSample: %v", err)
	}
	table, err := dataset.ReadTable(template)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("template has %d rows, want 2", len(table.Rows))
	}
	if err := writeSample(&out, songs, template, 4, 42); err == nil {
		t.Errorf("sampling more songs than have lyrics should fail")
	}

	figures := filepath.Join(dir, "figures")
	out.Reset()
	if err := runExplore(&out, songs, figures, 5); err != nil {
		t.Fatalf("runExplore: %v", err)
	}
	if !strings.Contains(out.String(), "Análise concluída!") {
		t.Errorf("explore output missing completion line:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(figures, "palavras_frequentes.png")); err != nil {
		t.Errorf("frequent words chart missing: %v", err)
	}
}

func TestRunAnalysisUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lyrics.db")
	if err := printRunAnalysis(dbPath, "nope", ByYearAnalyzer{}); err == nil {
		t.Errorf("printRunAnalysis should fail for an unknown run")
	}
	if err := exportRun(&bytes.Buffer{}, dbPath, t.TempDir(), "nope"); err == nil {
		t.Errorf("exportRun should fail for an unknown run")
	}
}
