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
	"github.com/ademuri/lyrics-tools/internal/sample"
)

const manualLabelsFile = "rotulos_manuais.csv"

var sampleSize int
var sampleSeed uint64
var sampleOutput string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Writes a manual-labelling template from a random sample of songs",
	Long: `Picks songs with lyrics using a fixed seed and writes them with blank
Pontuacao_manual, Justificativa and Referencia_criterio columns for manual
annotation. The same seed and input always give the same file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output := sampleOutput
		if output == "" {
			output = filepath.Join(viper.GetString("data-dir"), manualLabelsFile)
		}
		if err := writeSample(os.Stdout, songsPath(), output, sampleSize, sampleSeed); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().IntVarP(&sampleSize, "number", "n", sample.DefaultSize, "number of songs to sample")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", sample.DefaultSeed, "random seed")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "output CSV (default is <data-dir>/"+manualLabelsFile+")")
}

func writeSample(out io.Writer, input, output string, n int, seed uint64) error {
	ds, err := dataset.LoadSongs(input)
	if err != nil {
		return err
	}
	picked, err := sample.WriteTemplate(output, ds.Songs, n, seed)
	if err != nil {
		return err
	}
	logger.Debug("sampled songs", zap.Int("count", len(picked)), zap.Uint64("seed", seed))

	fmt.Fprintf(out, "Arquivo para rotulagem manual salvo em: %s\n", output)
	fmt.Fprintln(out, "Preencha os campos 'Pontuacao_manual', 'Justificativa' e 'Referencia_criterio' conforme a avaliação da equipe.")
	return nil
}
