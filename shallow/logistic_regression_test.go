package shallow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/manufacturingnet/mlgo/linear"
	"github.com/manufacturingnet/mlgo/pkg/log"
)

// separableData builds a two-class dataset with well-separated clusters,
// half the samples per class.
func separableData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		jitter := float64(i%5) * 0.1
		if i < n/2 {
			X.Set(i, 0, 0.5+jitter)
			X.Set(i, 1, 0.5-jitter)
		} else {
			X.Set(i, 0, 10.0+jitter)
			X.Set(i, 1, 10.0-jitter)
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func newTestWrapper(attributes, labels mat.Matrix) (*LogisticRegression, *log.TestLogger) {
	w := NewLogisticRegression(attributes, labels)
	tl, _ := log.NewTestLogger(log.LevelDebug)
	w.logger = tl
	return w, tl
}

func assertAllNil(t *testing.T, w *LogisticRegression) {
	t.Helper()
	assert.Nil(t, w.Classifier())
	assert.Nil(t, w.Accuracy())
	assert.Nil(t, w.ROCAUC())
	assert.Nil(t, w.Classes())
	assert.Nil(t, w.Coef())
	assert.Nil(t, w.Intercept())
	assert.Nil(t, w.NIter())
}

func TestRunSeparableData(t *testing.T) {
	X, y := separableData(60)
	w, _ := newTestWrapper(X, y)
	w.SetMaxIter(1000)

	w.Run()

	require.NotNil(t, w.Classifier())
	require.NotNil(t, w.Accuracy())
	require.NotNil(t, w.ROCAUC())

	assert.GreaterOrEqual(t, *w.Accuracy(), 0.0)
	assert.LessOrEqual(t, *w.Accuracy(), 1.0)
	assert.GreaterOrEqual(t, *w.ROCAUC(), 0.0)
	assert.LessOrEqual(t, *w.ROCAUC(), 1.0)

	assert.Greater(t, *w.Accuracy(), 0.9,
		"linearly separable clusters should be classified almost perfectly")

	assert.Equal(t, []int{0, 1}, w.Classes())
	require.Len(t, w.Coef(), 1)
	assert.Len(t, w.Coef()[0], 2)
	assert.Len(t, w.Intercept(), 1)
	assert.Len(t, w.NIter(), 1)
}

func TestRunMissingAttributes(t *testing.T) {
	_, y := separableData(20)
	w, tl := newTestWrapper(nil, y)

	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("attribute data missing"))
}

func TestRunMissingLabels(t *testing.T) {
	X, _ := separableData(20)
	w, tl := newTestWrapper(X, nil)

	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("label data missing"))
}

func TestRunRowMismatch(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	y := mat.NewDense(9, 1, nil)
	w, tl := newTestWrapper(X, y)

	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("row counts disagree"))
}

func TestRunNonNumericTestSize(t *testing.T) {
	X, y := separableData(20)
	w, tl := newTestWrapper(X, y)
	w.SetTestSize("a quarter")

	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("test size must be numeric"))
}

func TestRunNumericTestSizeKinds(t *testing.T) {
	// Integer and float32 test sizes must pass the type check; 1 as an int
	// is then rejected by the splitter as an out-of-range fraction.
	X, y := separableData(40)

	w, _ := newTestWrapper(X, y)
	w.SetTestSize(float32(0.25))
	w.Run()
	assert.NotNil(t, w.Accuracy())

	w, tl := newTestWrapper(X, y)
	w.SetTestSize(1)
	w.Run()
	assertAllNil(t, w)
	assert.True(t, tl.Contains("split failed"))
}

func TestRunUnsetTestSizeUsesDefault(t *testing.T) {
	X, y := separableData(40)
	w, _ := newTestWrapper(X, y)
	w.SetTestSize(nil)

	w.Run()

	require.NotNil(t, w.Accuracy())
	assert.Nil(t, w.TestSize())
}

func TestConfigGetters(t *testing.T) {
	X, y := separableData(20)
	w, _ := newTestWrapper(X, y)

	assert.Equal(t, "l2", w.Penalty())
	assert.Equal(t, "lbfgs", w.Solver())
	assert.Equal(t, 100, w.MaxIter())
	assert.Equal(t, 1.0, w.C())
	assert.True(t, w.FitIntercept())

	w.SetPenalty("elasticnet")
	w.SetL1Ratio(0.3)
	w.SetWarmStart(true)
	assert.Equal(t, "elasticnet", w.Penalty())
	assert.Equal(t, 0.3, w.L1Ratio())
	assert.True(t, w.WarmStart())
}

func TestRunBadSplitFraction(t *testing.T) {
	X, y := separableData(20)
	w, tl := newTestWrapper(X, y)
	w.SetTestSize(1.5)

	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("split failed"))
}

func TestRunFitFailureClearsOutputs(t *testing.T) {
	X, y := separableData(40)
	w, tl := newTestWrapper(X, y)

	// First a successful run so there are outputs to clear.
	w.Run()
	require.NotNil(t, w.Accuracy())

	// l1 with the default lbfgs solver fails hyperparameter validation
	// inside Fit.
	w.SetPenalty("l1")
	w.Run()

	assertAllNil(t, w)
	assert.True(t, tl.Contains("model fitting failed"))
}

type panickyClassifier struct{}

func (panickyClassifier) Fit(X, y mat.Matrix) error { panic("numeric kernel blew up") }

func (panickyClassifier) Predict(X mat.Matrix) (mat.Matrix, error) { return nil, nil }

func (panickyClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) { return nil, nil }

func (panickyClassifier) Classes() []int { return nil }

func (panickyClassifier) Coef() [][]float64 { return nil }

func (panickyClassifier) Intercept() []float64 { return nil }

func (panickyClassifier) NIter() []int { return nil }

func TestRunFitPanicDoesNotEscape(t *testing.T) {
	X, y := separableData(20)
	w, tl := newTestWrapper(X, y)
	w.newClassifier = func(opts ...linear.Option) Classifier {
		return panickyClassifier{}
	}

	assert.NotPanics(t, func() { w.Run() })
	assertAllNil(t, w)
	assert.True(t, tl.Contains("model fitting failed"))
}

func TestRunReplacesOutputs(t *testing.T) {
	X, y := separableData(60)
	w, _ := newTestWrapper(X, y)
	w.SetMaxIter(500)

	w.Run()
	require.NotNil(t, w.Accuracy())
	first := w.Accuracy()
	firstClassifier := w.Classifier()

	w.Run()
	require.NotNil(t, w.Accuracy())
	assert.NotSame(t, first, w.Accuracy())
	assert.NotSame(t, firstClassifier, w.Classifier())
}

func TestRunPreconditionFailureKeepsOutputs(t *testing.T) {
	X, y := separableData(60)
	w, tl := newTestWrapper(X, y)
	w.SetMaxIter(1000)

	w.Run()
	require.NotNil(t, w.Accuracy())
	accuracy := w.Accuracy()

	w.SetAttributes(nil)
	w.Run()

	assert.True(t, tl.Contains("attribute data missing"))
	assert.Same(t, accuracy, w.Accuracy(),
		"a failed precondition check must leave earlier results untouched")
	assert.NotNil(t, w.Classifier())
	assert.NotNil(t, w.ROCAUC())
	assert.NotNil(t, w.Coef())
}

func TestRunMultiColumnLabels(t *testing.T) {
	X, y := separableData(40)
	wide := mat.NewDense(40, 2, nil)
	for i := 0; i < 40; i++ {
		wide.Set(i, 0, y.At(i, 0))
		wide.Set(i, 1, 99) // discarded
	}
	w, _ := newTestWrapper(X, wide)

	w.Run()

	require.NotNil(t, w.Accuracy())
	assert.Equal(t, []int{0, 1}, w.Classes())
}

func TestRunMulticlass(t *testing.T) {
	X := mat.NewDense(30, 1, nil)
	y := mat.NewDense(30, 1, nil)
	for i := 0; i < 30; i++ {
		class := i / 10
		X.Set(i, 0, float64(class*5)+float64(i%10)*0.1)
		y.Set(i, 0, float64(class))
	}
	w, _ := newTestWrapper(X, y)
	w.SetMaxIter(1000)

	w.Run()

	require.NotNil(t, w.Accuracy())
	require.NotNil(t, w.ROCAUC())
	assert.Equal(t, []int{0, 1, 2}, w.Classes())
	assert.Len(t, w.Coef(), 3)
}

func TestROCPoints(t *testing.T) {
	X, y := separableData(60)
	w, _ := newTestWrapper(X, y)

	_, err := w.ROCPoints()
	assert.Error(t, err, "curve is unavailable before a successful run")

	w.SetMaxIter(1000)
	w.Run()
	require.NotNil(t, w.ROCAUC())

	points, err := w.ROCPoints()
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, 0.0, points[0].FPR)
	assert.Equal(t, 0.0, points[0].TPR)
	last := points[len(points)-1]
	assert.Equal(t, 1.0, last.FPR)
	assert.Equal(t, 1.0, last.TPR)
}

func TestSettersFeedTheModel(t *testing.T) {
	X, y := separableData(40)
	w, _ := newTestWrapper(X, y)

	var captured *linear.LogisticRegression
	w.newClassifier = func(opts ...linear.Option) Classifier {
		captured = linear.NewLogisticRegression(opts...)
		return captured
	}

	w.SetC(2.5)
	w.SetMaxIter(321)
	w.SetSolver("saga")
	w.SetClassWeight("balanced")
	w.SetRandomState(7)
	w.Run()

	require.NotNil(t, captured)
	params := captured.GetParams()
	assert.Equal(t, 2.5, params["C"])
	assert.Equal(t, 321, params["max_iter"])
	assert.Equal(t, "saga", params["solver"])
	assert.Equal(t, "balanced", params["class_weight"])
	assert.Equal(t, int64(7), params["random_state"])
}
