package tree

import (
	"fmt"
)

/*
Prediction represents a prediction made by a decision Tree: the
probability of each label and the number of training instances
it was computed from.
*/
type Prediction struct {
	probabilities [2]float64
	weight        int
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromEmptySet is the error returned when trying to build a
prediction from an empty tally.
*/
const ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty set")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPredictionFromCounts takes the label tallies of a set of instances and
returns the prediction they support, or ErrCannotPredictFromEmptySet if
both tallies are zero.
*/
func NewPredictionFromCounts(counts [2]int) (*Prediction, error) {
	weight := counts[0] + counts[1]
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	return &Prediction{
		probabilities: [2]float64{
			float64(counts[0]) / float64(weight),
			float64(counts[1]) / float64(weight),
		},
		weight: weight,
	}, nil
}

/*
NewMajorityPrediction takes the label tallies of a set of instances and
returns a prediction giving all the probability to its majority label
(1 on ties). Its weight is zero, since no instance supports it directly.
*/
func NewMajorityPrediction(counts [2]int) *Prediction {
	p := &Prediction{}
	if counts[0] > counts[1] {
		p.probabilities[0] = 1
	} else {
		p.probabilities[1] = 1
	}
	return p
}

// uniformPrediction is returned by trees holding no instances at all.
func uniformPrediction() *Prediction {
	return &Prediction{probabilities: [2]float64{0.5, 0.5}}
}

// ProbabilityOf returns the probability of the given label.
func (p *Prediction) ProbabilityOf(label int) float64 {
	return p.probabilities[label]
}

// Probabilities returns the probability of each label.
func (p *Prediction) Probabilities() [2]float64 {
	return p.probabilities
}

// Weight returns the number of instances the prediction was made from.
func (p *Prediction) Weight() int {
	return p.weight
}

/*
PredictedValue returns the most probable label and its probability.
Ties go to label 1.
*/
func (p *Prediction) PredictedValue() (int, float64) {
	if p.probabilities[0] > p.probabilities[1] {
		return 0, p.probabilities[0]
	}
	return 1, p.probabilities[1]
}

func (p *Prediction) String() string {
	return fmt.Sprintf("[0:%.3f 1:%.3f]", p.probabilities[0], p.probabilities[1])
}
