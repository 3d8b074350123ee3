// Standard attribute keys for machine learning log records. Using these
// keys keeps log output filterable across packages; they follow a
// hierarchical naming convention (e.g. "model.name", "data.samples").
package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model emitting the record.
	// Examples: "LogisticRegression".
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "predict", "predict_proba", "run", "split".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "linear", "shallow", "metrics".
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct class labels observed.
	ClassesKey = "data.classes"

	// TestSizeKey is the held-out fraction used for evaluation.
	TestSizeKey = "data.test_size"
)

// Metrics.
const (
	// AccuracyKey is the classification accuracy on the held-out split.
	AccuracyKey = "metric.accuracy"

	// ROCAUCKey is the ROC-AUC score on the held-out split.
	ROCAUCKey = "metric.roc_auc"

	// IterationsKey is the per-class iteration count used by the solver.
	IterationsKey = "solver.iterations"
)

// Error context.
const (
	// ErrAttrKey carries an error value.
	ErrAttrKey = "error"

	// ReasonKey carries a short machine-readable failure reason.
	ReasonKey = "reason"
)
