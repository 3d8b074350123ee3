// Package shallow provides high-level wrappers around classical models.
// Each wrapper owns the full train-and-evaluate cycle: it splits the data,
// fits the underlying model, scores it on the held-out partition and keeps
// the results readable through accessors. Failures never escape Run; they
// are logged and leave every accessor nil.
package shallow

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/manufacturingnet/mlgo/linear"
	"github.com/manufacturingnet/mlgo/metrics"
	"github.com/manufacturingnet/mlgo/modelselection"
	"github.com/manufacturingnet/mlgo/pkg/errors"
	"github.com/manufacturingnet/mlgo/pkg/log"
)

// Classifier is the capability the wrapper needs from the model it drives.
// *linear.LogisticRegression satisfies it.
type Classifier interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Classes() []int
	Coef() [][]float64
	Intercept() []float64
	NIter() []int
}

// LogisticRegression trains and evaluates a logistic-regression classifier
// on a single dataset. Hyperparameters are set freely before Run; they are
// only validated when the underlying model is fitted. After a successful
// Run the accessors expose the fitted parameters and held-out scores; after
// any failure they all return nil.
type LogisticRegression struct {
	attributes mat.Matrix
	labels     mat.Matrix

	// testSize stays untyped so callers can hand in anything; Run rejects
	// non-numeric values with a diagnostic instead of failing to compile
	// the call site.
	testSize any

	penalty          string
	dual             bool
	tol              float64
	c                float64
	fitIntercept     bool
	interceptScaling float64
	classWeight      string
	randomState      int64
	solver           string
	maxIter          int
	multiClass       string
	verbose          int
	warmStart        bool
	nJobs            int
	l1Ratio          float64

	// newClassifier builds the model Run drives. Tests swap it to inject
	// failing models.
	newClassifier func(opts ...linear.Option) Classifier

	classifier Classifier
	accuracy   *float64
	rocAUC     *float64
	classes    []int
	coef       [][]float64
	intercept  []float64
	nIter      []int

	// Held-out vectors the reported ROC-AUC was computed from, kept for
	// curve rendering.
	rocTruth  *mat.VecDense
	rocScores *mat.VecDense

	logger log.Logger
}

// NewLogisticRegression creates a wrapper over the given attribute matrix
// and label column with scikit-learn's hyperparameter defaults and a
// held-out fraction of modelselection.DefaultTestSize.
func NewLogisticRegression(attributes, labels mat.Matrix) *LogisticRegression {
	return &LogisticRegression{
		attributes:       attributes,
		labels:           labels,
		testSize:         modelselection.DefaultTestSize,
		penalty:          "l2",
		tol:              1e-4,
		c:                1.0,
		fitIntercept:     true,
		interceptScaling: 1.0,
		randomState:      -1,
		solver:           "lbfgs",
		maxIter:          100,
		multiClass:       "auto",
		l1Ratio:          math.NaN(),
		newClassifier: func(opts ...linear.Option) Classifier {
			return linear.NewLogisticRegression(opts...)
		},
		logger: log.GetLoggerWithName("shallow"),
	}
}

// SetAttributes replaces the feature matrix used by the next Run.
func (w *LogisticRegression) SetAttributes(attributes mat.Matrix) {
	w.attributes = attributes
}

// SetLabels replaces the label column used by the next Run.
func (w *LogisticRegression) SetLabels(labels mat.Matrix) {
	w.labels = labels
}

// SetTestSize sets the held-out fraction. Any value is accepted here;
// Run rejects values that are neither numeric nor nil, and the splitter
// rejects fractions outside (0, 1). A nil value selects the splitter's
// default fraction.
func (w *LogisticRegression) SetTestSize(testSize any) { w.testSize = testSize }

// SetPenalty sets the regularization type.
func (w *LogisticRegression) SetPenalty(penalty string) { w.penalty = penalty }

// SetDual enables the dual formulation.
func (w *LogisticRegression) SetDual(dual bool) { w.dual = dual }

// SetTol sets the convergence tolerance.
func (w *LogisticRegression) SetTol(tol float64) { w.tol = tol }

// SetC sets the inverse regularization strength.
func (w *LogisticRegression) SetC(c float64) { w.c = c }

// SetFitIntercept sets whether an intercept term is fitted.
func (w *LogisticRegression) SetFitIntercept(fit bool) { w.fitIntercept = fit }

// SetInterceptScaling sets the liblinear synthetic-feature scale.
func (w *LogisticRegression) SetInterceptScaling(scaling float64) {
	w.interceptScaling = scaling
}

// SetClassWeight sets the class weighting scheme, "" or "balanced".
func (w *LogisticRegression) SetClassWeight(weight string) { w.classWeight = weight }

// SetRandomState seeds the model's weight initialization. The train/test
// shuffle is not seeded by this value.
func (w *LogisticRegression) SetRandomState(seed int64) { w.randomState = seed }

// SetSolver sets the solver name.
func (w *LogisticRegression) SetSolver(solver string) { w.solver = solver }

// SetMaxIter sets the solver iteration cap.
func (w *LogisticRegression) SetMaxIter(maxIter int) { w.maxIter = maxIter }

// SetMultiClass sets the multi-class strategy.
func (w *LogisticRegression) SetMultiClass(multiClass string) { w.multiClass = multiClass }

// SetVerbose sets the verbosity level passed to the model.
func (w *LogisticRegression) SetVerbose(verbose int) { w.verbose = verbose }

// SetWarmStart reuses the previous solution on refit.
func (w *LogisticRegression) SetWarmStart(warm bool) { w.warmStart = warm }

// SetNJobs hints the prediction worker count.
func (w *LogisticRegression) SetNJobs(n int) { w.nJobs = n }

// SetL1Ratio sets the elastic-net mixing parameter.
func (w *LogisticRegression) SetL1Ratio(ratio float64) { w.l1Ratio = ratio }

// Classifier returns the fitted model from the last successful Run, or nil.
func (w *LogisticRegression) Classifier() Classifier { return w.classifier }

// Accuracy returns the held-out accuracy from the last successful Run, or
// nil.
func (w *LogisticRegression) Accuracy() *float64 { return w.accuracy }

// ROCAUC returns the held-out ROC-AUC from the last successful Run, or nil.
func (w *LogisticRegression) ROCAUC() *float64 { return w.rocAUC }

// Classes returns the class labels seen during the last successful Run, or
// nil.
func (w *LogisticRegression) Classes() []int { return w.classes }

// Coef returns the fitted coefficients, or nil.
func (w *LogisticRegression) Coef() [][]float64 { return w.coef }

// Intercept returns the fitted intercepts, or nil.
func (w *LogisticRegression) Intercept() []float64 { return w.intercept }

// NIter returns the solver iteration counts, or nil.
func (w *LogisticRegression) NIter() []int { return w.nIter }

// TestSize returns the currently configured held-out fraction as set.
func (w *LogisticRegression) TestSize() any { return w.testSize }

// Configuration getters, mirroring the setters.

func (w *LogisticRegression) Penalty() string { return w.penalty }

func (w *LogisticRegression) Dual() bool { return w.dual }

func (w *LogisticRegression) Tol() float64 { return w.tol }

func (w *LogisticRegression) C() float64 { return w.c }

func (w *LogisticRegression) FitIntercept() bool { return w.fitIntercept }

func (w *LogisticRegression) InterceptScaling() float64 { return w.interceptScaling }

func (w *LogisticRegression) ClassWeight() string { return w.classWeight }

func (w *LogisticRegression) RandomState() int64 { return w.randomState }

func (w *LogisticRegression) Solver() string { return w.solver }

func (w *LogisticRegression) MaxIter() int { return w.maxIter }

func (w *LogisticRegression) MultiClass() string { return w.multiClass }

func (w *LogisticRegression) Verbose() int { return w.verbose }

func (w *LogisticRegression) WarmStart() bool { return w.warmStart }

func (w *LogisticRegression) NJobs() int { return w.nJobs }

func (w *LogisticRegression) L1Ratio() float64 { return w.l1Ratio }

// reset clears the classifier and every output so a failed Run leaves no
// stale results behind.
func (w *LogisticRegression) reset() {
	w.classifier = nil
	w.accuracy = nil
	w.rocAUC = nil
	w.classes = nil
	w.coef = nil
	w.intercept = nil
	w.nIter = nil
	w.rocTruth = nil
	w.rocScores = nil
}

// Run validates the inputs, splits the dataset, fits the classifier and
// scores it on the held-out partition. It never returns an error: any
// failure is logged with a diagnostic and clears all outputs, so callers
// check Accuracy() or Classifier() for nil instead.
func (w *LogisticRegression) Run() {
	// Precondition failures must not disturb the outputs of an earlier
	// successful run, so the reset waits until the inputs check out.
	testSize, ok := w.checkInputs()
	if !ok {
		return
	}
	w.reset()

	logger := w.logger.With(
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, "run",
	)

	classifier := w.newClassifier(
		linear.WithPenalty(w.penalty),
		linear.WithDual(w.dual),
		linear.WithTol(w.tol),
		linear.WithC(w.c),
		linear.WithFitIntercept(w.fitIntercept),
		linear.WithInterceptScaling(w.interceptScaling),
		linear.WithClassWeight(w.classWeight),
		linear.WithRandomState(w.randomState),
		linear.WithSolver(w.solver),
		linear.WithMaxIter(w.maxIter),
		linear.WithMultiClass(w.multiClass),
		linear.WithVerbose(w.verbose),
		linear.WithWarmStart(w.warmStart),
		linear.WithNJobs(w.nJobs),
		linear.WithL1Ratio(w.l1Ratio),
	)

	// The shuffle draws from the package-level source; randomState seeds
	// only the model's weight initialization.
	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplit(
		w.attributes, w.labels, testSize)
	if err != nil {
		logger.Error("train/test split failed",
			log.ReasonKey, "split",
			log.ErrAttrKey, err)
		return
	}

	yTrainCol := labelColumn(yTrain)
	yTestCol := labelColumn(yTest)

	err = errors.SafeExecute("LogisticRegression.Fit", func() error {
		return classifier.Fit(XTrain, yTrainCol)
	})
	if err != nil {
		logger.Error("model fitting failed; check hyperparameter combination and input data",
			log.ReasonKey, "fit",
			log.ErrAttrKey, err)
		return
	}

	w.classifier = classifier
	w.classes = classifier.Classes()
	w.coef = classifier.Coef()
	w.intercept = classifier.Intercept()
	w.nIter = classifier.NIter()

	var predictions, probas mat.Matrix
	err = errors.SafeExecute("LogisticRegression.Predict", func() error {
		var predErr error
		if predictions, predErr = classifier.Predict(XTest); predErr != nil {
			return predErr
		}
		probas, predErr = classifier.PredictProba(XTest)
		return predErr
	})
	if err != nil {
		logger.Error("prediction on the held-out partition failed",
			log.ReasonKey, "predict",
			log.ErrAttrKey, err)
		w.reset()
		return
	}

	w.score(logger, predictions, probas, yTestCol)
}

// checkInputs verifies the data the caller configured, logging one specific
// diagnostic for the first problem found.
func (w *LogisticRegression) checkInputs() (float64, bool) {
	logger := w.logger.With(
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, "run",
	)

	if w.attributes == nil {
		logger.Error("attribute data missing; set the feature matrix before running",
			log.ReasonKey, "attributes_missing")
		return 0, false
	}
	if w.labels == nil {
		logger.Error("label data missing; set the label column before running",
			log.ReasonKey, "labels_missing")
		return 0, false
	}

	xRows, _ := w.attributes.Dims()
	yRows, _ := w.labels.Dims()
	if xRows != yRows {
		logger.Error("attribute and label row counts disagree",
			log.ReasonKey, "row_mismatch",
			log.SamplesKey, xRows,
			"data.labels", yRows)
		return 0, false
	}

	var testSize float64
	switch v := w.testSize.(type) {
	case nil:
		testSize = modelselection.DefaultTestSize
	case float64:
		testSize = v
	case float32:
		testSize = float64(v)
	case int:
		testSize = float64(v)
	case int32:
		testSize = float64(v)
	case int64:
		testSize = float64(v)
	default:
		logger.Error("test size must be numeric",
			log.ReasonKey, "test_size_type",
			log.TestSizeKey, w.testSize)
		return 0, false
	}

	return testSize, true
}

// score computes accuracy and ROC-AUC on the held-out partition and logs
// the outcome.
func (w *LogisticRegression) score(logger log.Logger, predictions, probas mat.Matrix, yTest *mat.Dense) {
	nTest, _ := yTest.Dims()

	predVec := mat.NewVecDense(nTest, nil)
	truthVec := mat.NewVecDense(nTest, nil)
	for i := 0; i < nTest; i++ {
		predVec.SetVec(i, predictions.At(i, 0))
		truthVec.SetVec(i, yTest.At(i, 0))
	}

	accuracy, err := metrics.Accuracy(predVec, truthVec)
	if err != nil {
		logger.Error("accuracy computation failed", log.ErrAttrKey, err)
		w.reset()
		return
	}
	w.accuracy = &accuracy

	// ROC-AUC ranks the positive-class probabilities against the model's
	// own hard predictions, expressed as a 0/1 indicator of the second
	// class.
	positive := w.classes[1]
	indicator := mat.NewVecDense(nTest, nil)
	scores := mat.NewVecDense(nTest, nil)
	for i := 0; i < nTest; i++ {
		if int(predictions.At(i, 0)) == positive {
			indicator.SetVec(i, 1)
		}
		scores.SetVec(i, probas.At(i, 1))
	}

	rocAUC, err := metrics.AUC(indicator, scores)
	if err != nil {
		logger.Error("ROC-AUC computation failed", log.ErrAttrKey, err)
		w.reset()
		return
	}
	w.rocAUC = &rocAUC
	w.rocTruth = indicator
	w.rocScores = scores

	logger.Info("evaluation complete",
		log.SamplesKey, nTest,
		log.ClassesKey, len(w.classes),
		log.AccuracyKey, accuracy,
		log.ROCAUCKey, rocAUC,
		log.IterationsKey, w.nIter)
}

// ROCPoints returns the ROC operating points underlying the reported
// ROC-AUC, or an error when no successful Run has happened or the curve is
// undefined for the held-out partition.
func (w *LogisticRegression) ROCPoints() ([]metrics.ROCPoint, error) {
	if w.rocTruth == nil || w.rocScores == nil {
		return nil, errors.NewNotFittedError("LogisticRegression", "ROCPoints")
	}
	return metrics.ROCCurve(w.rocTruth, w.rocScores)
}

// labelColumn reduces a label matrix to its first column, warning when
// extra columns are discarded.
func labelColumn(y *mat.Dense) *mat.Dense {
	rows, cols := y.Dims()
	if cols == 1 {
		return y
	}
	errors.Warn(errors.NewDataConversionWarning(
		"label matrix", "column vector", "using the first column only"))
	col := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		col.Set(i, 0, y.At(i, 0))
	}
	return col
}
