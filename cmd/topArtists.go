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
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lyrics-tools/internal/store"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists <run_id>",
	Short: "Ranks the artists of a run by flagged songs",
	Long:  `A song is flagged when its score is above zero. The run id may be shortened to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := TopArtistsAnalyzer{}.SetConfig(AnalyserConfig{topArtistsNumber})
		err := printRunAnalysis(viper.GetString("database"), args[0], analyser)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 10, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopArtistsAnalyzer) SetConfig(config AnalyserConfig) TopArtistsAnalyzer {
	t.Config = config
	return t
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(s *store.Store, run store.Run) (analysis Analysis, err error) {
	limit := t.Config.NumToReturn
	if limit <= 0 {
		limit = -1
	}
	artists, err := s.GetTopArtists(run.ID, limit)
	if err != nil {
		return
	}

	var flagged int64
	analysis.results = [][]string{{"Artist", "Songs", "Flagged", "Mean score"}}
	for _, a := range artists {
		flagged += a.Flagged
		analysis.results = append(analysis.results, []string{
			a.Artist,
			strconv.FormatInt(a.Songs, 10),
			strconv.FormatInt(a.Flagged, 10),
			fmt.Sprintf("%.2f", a.MeanScore),
		})
	}
	analysis.summary = fmt.Sprintf("%d artists, %d flagged songs", len(artists), flagged)
	return
}
