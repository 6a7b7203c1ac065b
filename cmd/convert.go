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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

var convertOutput string
var convertColumn string
var convertNewColumn bool

var convertCmd = &cobra.Command{
	Use:   "convert <input_csv>",
	Short: "Converts the textual toxicity labels of a CSV into scores",
	Long: `Converte a coluna 'nivel_toxicidade' de categorias textuais para valores numéricos.

  na=0.0, muito baixo=0.1, baixo=0.2, moderado=0.3, alto=0.8, muito alto=1.0

The input file is never modified. Without -o the output is written next to
the input with a _converted suffix.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := convertLabels(os.Stdout, args[0], convertOutput, toxicity.Options{
			Column:    convertColumn,
			NewColumn: convertNewColumn,
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output-csv", "o", "", "Caminho para salvar o CSV convertido")
	convertCmd.Flags().StringVar(&convertColumn, "column", toxicity.DefaultColumn, "Coluna com os rótulos textuais")
	convertCmd.Flags().BoolVar(&convertNewColumn, "new-column", false, "Mantém a coluna original e cria uma nova coluna numérica")
}

func convertLabels(out io.Writer, input, output string, opts toxicity.Options) error {
	path, err := toxicity.Convert(input, output, opts)
	if err != nil {
		return err
	}
	logger.Debug("converted labels", zap.String("input", input), zap.String("output", path))
	fmt.Fprintf(out, "Arquivo convertido salvo em: %s\n", path)
	return nil
}
