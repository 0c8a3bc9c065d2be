package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	train string
	test  string
	print bool
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a model from a set of data",
		Long:  `Grow a tree or a forest from a set of data and evaluate it on a test set.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			modelConfig, err := config.modelConfig(cmd.Flags().Changed("seed"))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			m, name, err := config.newModel(modelConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			train, err := config.readDataset(ctx, config.train)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(2)
			}
			log.Infof("growing %s from %d instances with %d attributes to predict %s (entropy %.3f)", name, train.Count(), len(train.Names), train.Label, train.Entropy())
			start := time.Now()
			err = m.Fit(train.X, train.Y)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the %s: %v\n", name, err)
				os.Exit(3)
			}
			log.Infof("done in %s", time.Since(start))
			if config.print {
				fmt.Println(m)
			}
			if config.test != "" {
				test, err := config.readDataset(ctx, config.test)
				if err != nil {
					fmt.Fprintf(os.Stderr, "reading test set: %v\n", err)
					os.Exit(2)
				}
				e, err := evaluate(m, test)
				if err != nil {
					fmt.Fprintf(os.Stderr, "evaluating the %s: %v\n", name, err)
					os.Exit(4)
				}
				fmt.Println(e)
			}
			writeStatistics(os.Stdout, name, m)
			err = config.export(ctx, name, m)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.train), "train", "t", "", "training set: a CSV file path (defaults to STDIN) or a table or collection name")
	cmd.Flags().StringVar(&(config.test), "test", "", "test set to evaluate the model on: a CSV file path or a table or collection name")
	cmd.Flags().BoolVar(&(config.print), "print", false, "print the grown model")
	return cmd
}
