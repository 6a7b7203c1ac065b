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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lyrics-tools/internal/classify"
	"github.com/ademuri/lyrics-tools/internal/store"
	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

var exportCmd = &cobra.Command{
	Use:   "export <run_id>",
	Short: "Rewrites the CSV and JSON output of a recorded run",
	Long: `Reads the accepted results of a run from the database and writes them to
<results-dir>/relacionamentos_toxicos_<run_id>.csv and .json. This also
recovers the results of an interrupted run.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := exportRun(os.Stdout, viper.GetString("database"), viper.GetString("results-dir"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func exportRun(out io.Writer, dbPath, dir, runID string) error {
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	rows, err := s.GetClassifications(run.ID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nenhum resultado retornado.")
		return nil
	}

	profile := runProfile(run)
	results := make([]classify.Result, len(rows))
	for i, c := range rows {
		results[i] = fromClassification(c)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	base := filepath.Join(dir, "relacionamentos_toxicos_"+run.ID)
	if err := classify.WriteCSV(base+".csv", profile, results); err != nil {
		return err
	}
	if err := classify.WriteJSON(base+".json", profile, results); err != nil {
		return err
	}
	fmt.Fprintf(out, "Resultados salvos em:\n→ CSV: %s.csv\n→ JSON: %s.json\n", base, base)
	return nil
}

// runProfile rebuilds the output layout of a run. Only the schema and flag
// names matter for writing results.
func runProfile(run store.Run) *classify.Profile {
	return &classify.Profile{
		Name:   run.Profile,
		Model:  run.Model,
		Schema: classify.Schema(run.Schema),
		Flags:  run.Flags,
	}
}

func toClassification(r classify.Result) store.Classification {
	return store.Classification{
		SongIndex:     r.Index,
		Title:         r.Title,
		Artist:        r.Artist,
		Year:          r.Year,
		Level:         string(r.Level),
		Score:         r.Score,
		Flags:         r.Flags,
		Justification: r.Justification,
		Attempts:      r.Attempts,
	}
}

func fromClassification(c store.Classification) classify.Result {
	return classify.Result{
		Index:         c.SongIndex,
		Title:         c.Title,
		Artist:        c.Artist,
		Year:          c.Year,
		Level:         toxicity.Level(c.Level),
		Score:         c.Score,
		Flags:         c.Flags,
		Justification: c.Justification,
		Attempts:      c.Attempts,
	}
}

// storeRecorder saves each accepted result of a run as it arrives, so an
// interrupted run can still be exported.
type storeRecorder struct {
	store *store.Store
	runID string
}

func (r storeRecorder) Record(res classify.Result) error {
	return r.store.AddClassification(r.runID, toClassification(res))
}
