/*
Copyright 2020 Google LLC

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
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/lyrics-tools/internal/store"
)

type Analysis struct {
	results [][]string
	summary string
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int
}

// Analyser reports on the stored results of one classification run.
type Analyser interface {
	GetResults(s *store.Store, run store.Run) (Analysis, error)

	GetName() string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

// printRunAnalysis opens the store, resolves runID and prints the analyser's
// table.
func printRunAnalysis(dbPath, runID string, analyser Analyser) error {
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	analysis, err := analyser.GetResults(s, run)
	if err != nil {
		return fmt.Errorf("%s: %w", analyser.GetName(), err)
	}
	fmt.Printf("%s for run %s (%s)\n", analyser.GetName(), run.ID, run.Profile)
	fmt.Println(analysis)
	return nil
}
