package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose         bool
	seed            int64
	configPath      string
	label           string
	source          string
	dsn             string
	singleTree      bool
	metricsTextfile string
	redisAddr       string
	redisPrefix     string
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "dare",
		Short: "dare is a tool to grow decision trees that can unlearn",
		Long:  `A tool to grow decision trees and random forests on binary data, evaluate them and remove or add training instances without retraining from scratch`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(config.verbose)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&(config.verbose), "verbose", "v", false, "log debug messages")
	flags.Int64Var(&(config.seed), "seed", 0, "seed of the random source of the model (defaults to the random_state of the config file or to a clock seed)")
	flags.StringVarP(&(config.configPath), "config", "c", "", "path to a YAML file with the model configuration")
	flags.StringVarP(&(config.label), "label", "l", "", "name of the label column (defaults to the last CSV column)")
	flags.StringVar(&(config.source), "source", "csv", "where datasets are read from: csv, sqlite3, postgres or mongodb")
	flags.StringVar(&(config.dsn), "dsn", "", "SQLite3 file path, PostgreSQL connection URL or MongoDB URL for non CSV sources")
	flags.BoolVar(&(config.singleTree), "tree", false, "grow a single tree instead of a forest")
	flags.StringVar(&(config.metricsTextfile), "metrics-textfile", "", "path to a file to write the statistics to in the prometheus text format")
	flags.StringVar(&(config.redisAddr), "redis-addr", "", "address of a redis server to publish the statistics to")
	flags.StringVar(&(config.redisPrefix), "redis-prefix", "dare", "prefix of the redis keys statistics are published under")
	rootCmd.AddCommand(versionCmd(), growCmd(config), unlearnCmd(config))
	return rootCmd
}
