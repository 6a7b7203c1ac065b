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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const datasetFile = "all_songs_data.csv"

var cfgFile string
var dataDir string
var resultsDir string
var datasetPath string
var databasePath string
var verbose bool
var sendgridAPIKey string

// logger is replaced in PersistentPreRunE; the no-op default keeps the
// command helpers usable from tests.
var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lyrics-tools",
	Short: "Analyses song lyrics for toxic relationship content",
	Long: `Tools over a dataset of song lyrics: label conversion, exploratory
charts, manual-label sampling and classification with a local Ollama model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.lyrics-tools.yaml)")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory holding the input CSVs")
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.PersistentFlags().StringVar(&resultsDir, "results-dir", "results", "Directory for charts and classification output")
	viper.BindPFlag("results-dir", rootCmd.PersistentFlags().Lookup("results-dir"))

	rootCmd.PersistentFlags().StringVar(
		&datasetPath, "dataset", "", "Song CSV (default is <data-dir>/"+datasetFile+")")
	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./lyrics.db", "Path to the SQLite run database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().StringVar(&sendgridAPIKey, "sendgrid_api_key", "", "SendGrid API key for run notifications")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))

	var from string
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".lyrics-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".lyrics-tools")
	}

	viper.SetEnvPrefix("LYRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// songsPath is the song CSV selected by --dataset or --data-dir.
func songsPath() string {
	if p := viper.GetString("dataset"); p != "" {
		return p
	}
	return filepath.Join(viper.GetString("data-dir"), datasetFile)
}
