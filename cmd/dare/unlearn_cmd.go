package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type unlearnCmdConfig struct {
	*rootCmdConfig
	train     string
	test      string
	deletions int
	deleteIDs []int
	additions int
	batch     bool
}

func unlearnCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &unlearnCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "unlearn",
		Short: "Grow a model and remove training instances from it",
		Long:  `Grow a tree or a forest, delete some of its training instances and add new ones, reporting its performance on a test set before and after along with the work the changes took.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
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
			test, err := config.readDataset(ctx, config.test)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading test set: %v\n", err)
				os.Exit(2)
			}
			err = m.Fit(train.X, train.Y)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the %s: %v\n", name, err)
				os.Exit(3)
			}
			before, err := evaluate(m, test)
			if err != nil {
				fmt.Fprintf(os.Stderr, "evaluating the %s: %v\n", name, err)
				os.Exit(4)
			}
			fmt.Printf("before: %v\n", before)
			ids := config.deleteIDs
			if len(ids) == 0 {
				ids = sampleIDs(modelConfig.RandomState, train.Count(), config.deletions)
			}
			start := time.Now()
			err = config.delete(m, ids)
			if err != nil {
				fmt.Fprintf(os.Stderr, "deleting instances: %v\n", err)
				os.Exit(6)
			}
			log.Infof("deleted %d instances in %s", len(ids), time.Since(start))
			if config.additions > 0 {
				rows := test.Subset(firstRows(config.additions, test.Count()))
				added, err := m.Add(rows.X, rows.Y)
				if err != nil {
					fmt.Fprintf(os.Stderr, "adding instances: %v\n", err)
					os.Exit(6)
				}
				log.Infof("added %d test instances as %v", len(added), added)
			}
			after, err := evaluate(m, test)
			if err != nil {
				fmt.Fprintf(os.Stderr, "evaluating the %s: %v\n", name, err)
				os.Exit(4)
			}
			fmt.Printf("after: %v\n", after)
			writeStatistics(os.Stdout, name, m)
			err = config.export(ctx, name, m)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.train), "train", "t", "", "training set: a CSV file path (defaults to STDIN) or a table or collection name")
	cmd.Flags().StringVar(&(config.test), "test", "", "test set to evaluate the model on: a CSV file path or a table or collection name (required)")
	cmd.Flags().IntVarP(&(config.deletions), "delete", "d", 1, "number of random training instances to delete")
	cmd.Flags().IntSliceVar(&(config.deleteIDs), "delete-ids", nil, "identifiers (row numbers starting at 0) of the training instances to delete, overrides --delete")
	cmd.Flags().IntVarP(&(config.additions), "add", "a", 0, "number of test rows to add as training instances after deleting")
	cmd.Flags().BoolVar(&(config.batch), "batch", false, "delete all the instances in a single call instead of one at a time")
	return cmd
}

func (ucc *unlearnCmdConfig) Validate() error {
	if ucc.test == "" {
		return fmt.Errorf("required test flag was not set")
	}
	if ucc.deletions < 0 || ucc.additions < 0 {
		return fmt.Errorf("delete and add flags must not be negative")
	}
	return nil
}

func (ucc *unlearnCmdConfig) delete(m model, ids []int) error {
	if ucc.batch {
		return m.Delete(ids)
	}
	for _, id := range ids {
		start := time.Now()
		if err := m.Delete([]int{id}); err != nil {
			return err
		}
		log.Debugf("deleted instance %d in %s", id, time.Since(start))
	}
	return nil
}

/*
sampleIDs draws k distinct identifiers out of n. Given the model seed it
draws them from the next seed, so the sample does not replay the model's
random stream.
*/
func sampleIDs(seed *int64, n, k int) []int {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed + 1
	}
	if k > n {
		k = n
	}
	return rand.New(rand.NewSource(s)).Perm(n)[:k]
}

func firstRows(k, n int) []int {
	if k > n {
		k = n
	}
	rows := make([]int, k)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

