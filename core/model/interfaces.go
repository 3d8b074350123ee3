package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on the given feature matrix and target.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that predict on new data.
type Predictor interface {
	// Predict returns predictions for the input data.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier combines the interfaces of classification models.
type Classifier interface {
	Fitter
	Predictor

	// PredictProba returns per-class probability estimates, one column per
	// class in the order reported by Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted unique classes seen during fitting.
	Classes() []int
}
