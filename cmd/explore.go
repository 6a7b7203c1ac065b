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
	"go.uber.org/zap"

	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/explore"
)

var exploreTopWords int

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Runs the exploratory analysis and writes charts",
	Long: `Prints basic statistics of the song dataset and writes the temporal
distribution, lyric length, sensitive-term and frequent-word charts to
<results-dir>/figures. A failing analysis is reported and the others still run.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		figures := filepath.Join(viper.GetString("results-dir"), "figures")
		if err := runExplore(os.Stdout, songsPath(), figures, exploreTopWords); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	exploreCmd.Flags().IntVarP(&exploreTopWords, "number", "n", 20, "number of frequent words to chart")
}

func runExplore(out io.Writer, path, figuresDir string, topWords int) error {
	fmt.Fprintln(out, "Carregando o dataset...")
	ds, err := dataset.LoadSongs(path)
	if err != nil {
		return fmt.Errorf("Erro ao carregar o dataset: %w", err)
	}
	logger.Info("loaded dataset", zap.String("path", path), zap.Int("songs", len(ds.Songs)))

	pipeline := explore.New(explore.Config{
		FiguresDir: figuresDir,
		Out:        out,
		Logger:     logger,
		TopWords:   topWords,
	})
	if err := pipeline.Run(ds); err != nil {
		logger.Warn("some analyses failed", zap.Error(err))
	}
	fmt.Fprintf(out, "\nAnálise concluída! Os gráficos foram salvos na pasta '%s'.\n", figuresDir)
	return nil
}
