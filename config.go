package dare

import (
	"fmt"
	"io/ioutil"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

/*
Config holds the options of trees and forests. Its zero value is not
valid, use DefaultConfig to obtain one with every option set.
*/
type Config struct {
	// Privacy budget of split selection: the larger, the greedier.
	Epsilon float64 `yaml:"epsilon"`
	// Tolerated probability of retraining, drives the retrain budget of nodes.
	Gamma float64 `yaml:"gamma"`
	// Number of trees of a forest.
	NEstimators int `yaml:"n_estimators"`
	// Depth at which nodes become leaves.
	MaxDepth int `yaml:"max_depth"`
	// Number of top layers whose split attribute is drawn uniformly among
	// the valid ones instead of by score. Such nodes are only rebuilt when
	// their attribute no longer splits their instances.
	TopD int `yaml:"topd"`
	// Attributes each tree of a forest may split on.
	MaxFeatures MaxFeatures `yaml:"max_features"`
	// Whether the trees of a forest are fitted on bootstrap samples.
	Bootstrap bool `yaml:"bootstrap"`
	// Seed of the random source. Nil seeds it from the clock.
	RandomState *int64 `yaml:"random_state"`
	// Impurity measure: gini or entropy.
	Criterion Criterion `yaml:"criterion"`
	// Nodes with fewer instances become leaves.
	MinSupport int `yaml:"min_support"`
	// Growth workers per tree.
	NJobs int `yaml:"n_jobs"`
}

// DefaultConfig returns the configuration used for options left unset.
func DefaultConfig() Config {
	return Config{
		Epsilon:     0.1,
		Gamma:       0.1,
		NEstimators: 100,
		MaxDepth:    10,
		MaxFeatures: Fraction(1.0),
		Criterion:   Gini,
		MinSupport:  2,
		NJobs:       1,
	}
}

/*
Validate returns an error wrapping ErrInvalidConfig that lists every
option violating its constraints, or nil.
*/
func (c Config) Validate() error {
	var err error
	if !(c.Epsilon > 0) || math.IsInf(c.Epsilon, 1) {
		err = multierr.Append(err, fmt.Errorf("epsilon must be a positive number, got %v", c.Epsilon))
	}
	if !(c.Gamma > 0 && c.Gamma <= 1) {
		err = multierr.Append(err, fmt.Errorf("gamma must be in (0, 1], got %v", c.Gamma))
	}
	if c.NEstimators <= 0 {
		err = multierr.Append(err, fmt.Errorf("n_estimators must be positive, got %d", c.NEstimators))
	}
	if c.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.TopD < 0 || c.TopD > c.MaxDepth {
		err = multierr.Append(err, fmt.Errorf("topd must be in [0, max_depth], got %d", c.TopD))
	}
	if e := c.MaxFeatures.validate(); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := ParseCriterion(string(c.Criterion)); e != nil {
		err = multierr.Append(err, e)
	}
	if c.MinSupport < 1 {
		err = multierr.Append(err, fmt.Errorf("min_support must be at least 1, got %d", c.MinSupport))
	}
	if c.NJobs < 1 {
		err = multierr.Append(err, fmt.Errorf("n_jobs must be at least 1, got %d", c.NJobs))
	}
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

/*
LoadConfig takes the path to a YAML file and returns the configuration it
describes, with unspecified options taking their default value.
*/
func LoadConfig(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %s", path)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	return c, nil
}

// ParseConfig takes YAML data and returns the configuration it describes.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	err := yaml.UnmarshalStrict(data, &c)
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

/*
MaxFeatures specifies the number of attributes a tree of a forest may
split on: a fraction of the width in (0, 1], an absolute count or the
square root of the width.
*/
type MaxFeatures struct {
	fraction float64
	count    int
	sqrt     bool
}

// Fraction returns a MaxFeatures keeping the given fraction of attributes.
func Fraction(f float64) MaxFeatures {
	return MaxFeatures{fraction: f}
}

// Count returns a MaxFeatures keeping the given number of attributes.
func Count(n int) MaxFeatures {
	return MaxFeatures{count: n}
}

// Sqrt returns a MaxFeatures keeping the square root of the width.
func Sqrt() MaxFeatures {
	return MaxFeatures{sqrt: true}
}

/*
Resolve takes the width of the attribute vectors and returns the number of
attributes to keep, at least 1. It fails when a count exceeds the width.
*/
func (mf MaxFeatures) Resolve(width int) (int, error) {
	var n int
	switch {
	case mf.sqrt:
		n = int(math.Sqrt(float64(width)))
	case mf.count > 0:
		if mf.count > width {
			return 0, errors.Wrapf(ErrInvalidConfig, "max_features %d exceeds the %d attributes", mf.count, width)
		}
		n = mf.count
	default:
		n = int(mf.fraction * float64(width))
	}
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n, nil
}

func (mf MaxFeatures) validate() error {
	switch {
	case mf.sqrt:
		return nil
	case mf.count != 0:
		if mf.count < 1 {
			return fmt.Errorf("max_features count must be at least 1, got %d", mf.count)
		}
		return nil
	case !(mf.fraction > 0 && mf.fraction <= 1):
		return fmt.Errorf("max_features fraction must be in (0, 1], got %v", mf.fraction)
	}
	return nil
}

func (mf MaxFeatures) String() string {
	switch {
	case mf.sqrt:
		return "sqrt"
	case mf.count != 0:
		return fmt.Sprintf("%d", mf.count)
	}
	return fmt.Sprintf("%g", mf.fraction)
}

// UnmarshalYAML reads integers as counts, floats as fractions and "sqrt".
func (mf *MaxFeatures) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case int:
		*mf = Count(v)
	case float64:
		*mf = Fraction(v)
	case string:
		if strings.ToLower(v) != "sqrt" {
			return fmt.Errorf("unknown max_features %q", v)
		}
		*mf = Sqrt()
	default:
		return fmt.Errorf("unknown max_features %v", v)
	}
	return nil
}

// MarshalYAML writes the option back in the form UnmarshalYAML reads.
func (mf MaxFeatures) MarshalYAML() (interface{}, error) {
	switch {
	case mf.sqrt:
		return "sqrt", nil
	case mf.count != 0:
		return mf.count, nil
	}
	return mf.fraction, nil
}
