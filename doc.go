// Package mlgo is a machine learning library for Go centered on classical
// classification workflows.
//
// The packages are layered from low-level building blocks to a high-level
// wrapper:
//
//   - linear: logistic-regression classifier with a scikit-learn style API
//     (functional options, Fit/Predict/PredictProba, fitted-parameter
//     accessors).
//   - modelselection: randomized train/test splitting.
//   - metrics: accuracy, log loss, ROC-AUC and ROC curve computation.
//   - shallow: the train-and-evaluate wrapper that ties the above together
//     behind a single Run call with logged, non-escaping failures.
//   - visualize: ROC curve rendering via gonum/plot.
//   - pkg/errors, pkg/log: structured errors and warnings, and the zerolog
//     backed logging layer the model packages report through.
//
// A minimal session:
//
//	model := shallow.NewLogisticRegression(X, y)
//	model.SetMaxIter(500)
//	model.Run()
//	if acc := model.Accuracy(); acc != nil {
//	    fmt.Printf("held-out accuracy: %.3f\n", *acc)
//	}
package mlgo
