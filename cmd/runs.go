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
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lyrics-tools/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Lists the recorded classification runs",
	Long:  `Runs are listed newest first. A run without an end time was interrupted.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := listRuns(os.Stdout, viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func listRuns(out io.Writer, dbPath string) error {
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	analysis := Analysis{results: [][]string{{"ID", "Profile", "Model", "Started", "Finished", "Processed", "Accepted", "Skipped", "CSV"}}}
	for _, r := range runs {
		finished := "-"
		if !r.Finished.IsZero() {
			finished = r.Finished.Local().Format(time.DateTime)
		}
		analysis.results = append(analysis.results, []string{
			r.ID,
			r.Profile,
			r.Model,
			r.Started.Local().Format(time.DateTime),
			finished,
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Accepted),
			strconv.Itoa(r.Skipped),
			r.CSVPath,
		})
	}
	analysis.summary = fmt.Sprintf("%d runs", len(runs))
	fmt.Fprint(out, analysis)
	return nil
}
