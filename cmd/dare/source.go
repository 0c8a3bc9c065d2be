package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	mgo "gopkg.in/mgo.v2"

	"github.com/jjbrophy47/dare"
	"github.com/jjbrophy47/dare/dataset"
	"github.com/jjbrophy47/dare/dataset/csv"
	"github.com/jjbrophy47/dare/dataset/mongodataset"
	"github.com/jjbrophy47/dare/dataset/sqldataset"
	"github.com/jjbrophy47/dare/dataset/sqldataset/pgadapter"
	"github.com/jjbrophy47/dare/dataset/sqldataset/sqlite3adapter"
	"github.com/jjbrophy47/dare/stats"
)

/*
readDataset takes the name of a dataset, a CSV file path or a table or
collection name depending on the source, and reads it.
*/
func (rc *rootCmdConfig) readDataset(ctx context.Context, name string) (*dataset.Dataset, error) {
	log.Debugf("reading dataset %s from %s source", name, rc.source)
	switch rc.source {
	case "csv":
		return csv.ReadDatasetFromFilePath(name, rc.label)
	case "sqlite3", "postgres":
		if rc.label == "" {
			return nil, fmt.Errorf("the label flag is required to read from %s", rc.source)
		}
		var a sqldataset.Adapter
		var err error
		if rc.source == "sqlite3" {
			a, err = sqlite3adapter.New(rc.dsn)
		} else {
			a, err = pgadapter.New(rc.dsn)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s database", rc.source)
		}
		defer a.Close()
		return sqldataset.Read(ctx, a, name, rc.label)
	case "mongodb":
		if rc.label == "" {
			return nil, fmt.Errorf("the label flag is required to read from mongodb")
		}
		session, err := mgo.Dial(rc.dsn)
		if err != nil {
			return nil, errors.Wrap(err, "connecting to mongodb")
		}
		defer session.Close()
		return mongodataset.Read(ctx, session, name, rc.label, nil)
	}
	return nil, fmt.Errorf("unknown source %q", rc.source)
}

// model is implemented by trees and forests.
type model interface {
	stats.Source
	Fit(X [][]int, y []int) error
	Predict(X [][]int) ([]int, error)
	PredictProba(X [][]int) ([][2]float64, error)
	Add(X [][]int, y []int) ([]int, error)
	Delete(ids []int) error
	NodeCount() int
	MemoryUsage() int
}

func (rc *rootCmdConfig) modelConfig(seedSet bool) (dare.Config, error) {
	config := dare.DefaultConfig()
	if rc.configPath != "" {
		var err error
		config, err = dare.LoadConfig(rc.configPath)
		if err != nil {
			return config, err
		}
	}
	if seedSet {
		seed := rc.seed
		config.RandomState = &seed
	}
	return config, config.Validate()
}

func (rc *rootCmdConfig) newModel(config dare.Config) (model, string, error) {
	if rc.singleTree {
		t, err := dare.NewTree(config)
		return t, "tree", err
	}
	f, err := dare.NewForest(config)
	return f, "forest", err
}
