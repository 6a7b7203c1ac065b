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
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lyrics-tools/internal/store"
)

var byYearCmd = &cobra.Command{
	Use:   "by-year <run_id>",
	Short: "Shows the mean toxicity score of a run per release year",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printRunAnalysis(viper.GetString("database"), args[0], ByYearAnalyzer{})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(byYearCmd)
}

type ByYearAnalyzer struct{}

func (ByYearAnalyzer) GetName() string {
	return "Toxicity by year"
}

func (ByYearAnalyzer) GetResults(s *store.Store, run store.Run) (analysis Analysis, err error) {
	years, err := s.GetToxicityByYear(run.ID)
	if err != nil {
		return
	}
	analysis.results = [][]string{{"Year", "Songs", "Mean score"}}
	for _, y := range years {
		analysis.results = append(analysis.results, []string{
			strconv.Itoa(y.Year),
			strconv.FormatInt(y.Songs, 10),
			fmt.Sprintf("%.2f", y.MeanScore),
		})
	}
	return
}
