// Package linear provides linear classification models.
package linear

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/manufacturingnet/mlgo/core/model"
	"github.com/manufacturingnet/mlgo/core/parallel"
	"github.com/manufacturingnet/mlgo/pkg/errors"
)

// parallelThreshold is the batch size below which prediction stays
// sequential.
const parallelThreshold = 256

// LogisticRegression is a logistic-regression classifier trained by
// gradient descent, with an API modeled on scikit-learn's estimator of the
// same name. Binary problems use a single sigmoid model; multiclass
// problems use one-vs-rest, or a joint softmax model when multi_class is
// "multinomial".
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	penalty          string  // "l1", "l2", "elasticnet", "none"
	dual             bool    // dual formulation, liblinear with l2 only
	tol              float64 // convergence tolerance on the gradient
	c                float64 // inverse regularization strength
	fitIntercept     bool
	interceptScaling float64
	classWeight      string // "" or "balanced"
	randomState      int64  // seed for weight initialization, <0 means unseeded
	solver           string // "lbfgs", "liblinear", "newton-cg", "sag", "saga"
	maxIter          int
	multiClass       string // "auto", "ovr", "multinomial"
	verbose          int
	warmStart        bool
	nJobs            int     // parallelism hint for batch prediction
	l1Ratio          float64 // elastic-net mixing, NaN when unset

	// Fitted parameters
	coef      [][]float64 // one row per model (1 for binary, nClasses otherwise)
	intercept []float64
	classes   []int
	nFeatures int
	nIter     []int

	rng *rand.Rand
}

// NewLogisticRegression creates a classifier with scikit-learn's defaults,
// modified by the given options.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		state:            model.NewStateManager(),
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
	}

	for _, opt := range opts {
		opt(lr)
	}

	if lr.randomState >= 0 {
		lr.rng = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return lr
}

var knownSolvers = map[string]bool{
	"lbfgs": true, "liblinear": true, "newton-cg": true, "sag": true, "saga": true,
}

var knownPenalties = map[string]bool{
	"l1": true, "l2": true, "elasticnet": true, "none": true,
}

// validateParams enforces solver/penalty compatibility the way
// scikit-learn does; violations surface as fit errors.
func (lr *LogisticRegression) validateParams() error {
	if !knownSolvers[lr.solver] {
		return errors.NewValidationError("solver", "unknown solver", lr.solver)
	}
	if !knownPenalties[lr.penalty] {
		return errors.NewValidationError("penalty", "unknown penalty", lr.penalty)
	}
	if lr.c <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.c)
	}
	if lr.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", lr.maxIter)
	}
	if lr.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", lr.tol)
	}

	switch lr.penalty {
	case "l1":
		if lr.solver != "liblinear" && lr.solver != "saga" {
			return errors.NewValidationError("penalty",
				"l1 penalty requires the liblinear or saga solver", lr.solver)
		}
	case "elasticnet":
		if lr.solver != "saga" {
			return errors.NewValidationError("penalty",
				"elasticnet penalty requires the saga solver", lr.solver)
		}
		if math.IsNaN(lr.l1Ratio) {
			return errors.NewValidationError("l1_ratio",
				"must be set when penalty is elasticnet", nil)
		}
	case "none":
		if lr.solver == "liblinear" {
			return errors.NewValidationError("penalty",
				"liblinear does not support penalty 'none'", lr.solver)
		}
	}

	if !math.IsNaN(lr.l1Ratio) {
		if lr.penalty != "elasticnet" {
			return errors.NewValidationError("l1_ratio",
				"only used when penalty is elasticnet", lr.l1Ratio)
		}
		if lr.l1Ratio < 0 || lr.l1Ratio > 1 {
			return errors.NewValidationError("l1_ratio", "must be in [0, 1]", lr.l1Ratio)
		}
	}

	if lr.dual && (lr.solver != "liblinear" || lr.penalty != "l2") {
		return errors.NewValidationError("dual",
			"dual formulation requires the liblinear solver with l2 penalty", lr.solver)
	}

	switch lr.multiClass {
	case "auto", "ovr":
	case "multinomial":
		if lr.solver == "liblinear" {
			return errors.NewValidationError("multi_class",
				"multinomial is not supported by the liblinear solver", lr.solver)
		}
	default:
		return errors.NewValidationError("multi_class", "unknown strategy", lr.multiClass)
	}

	if lr.classWeight != "" && lr.classWeight != "balanced" {
		return errors.NewValidationError("class_weight",
			"must be empty or 'balanced'", lr.classWeight)
	}

	return nil
}

// Fit trains the classifier. X is (nSamples, nFeatures); y is a single
// column of class labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LogisticRegression.Fit")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a single column of labels")
	}
	if err := lr.validateParams(); err != nil {
		return err
	}

	lr.extractClasses(y)
	if len(lr.classes) < 2 {
		return errors.NewValueError("LogisticRegression.Fit",
			"training data must contain at least two classes")
	}

	sampleWeight := lr.sampleWeights(y, nSamples)

	nModels := len(lr.classes)
	if nModels == 2 {
		nModels = 1
	}
	if !lr.warmStart || lr.coef == nil || lr.nFeatures != nFeatures || len(lr.coef) != nModels {
		lr.initializeWeights(nFeatures)
	}
	lr.nFeatures = nFeatures

	var err error
	switch {
	case len(lr.classes) == 2:
		err = lr.fitSigmoid(X, lr.indicator(y, lr.classes[1]), sampleWeight, 0)
	case lr.multiClass == "multinomial":
		err = lr.fitSoftmax(X, y, sampleWeight)
	default:
		err = lr.fitOneVsRest(X, y, sampleWeight)
	}
	if err != nil {
		return err
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// extractClasses records the sorted unique labels in y.
func (lr *LogisticRegression) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classSet := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classSet[int(y.At(i, 0))] = true
	}

	lr.classes = make([]int, 0, len(classSet))
	for class := range classSet {
		lr.classes = append(lr.classes, class)
	}
	sort.Ints(lr.classes)
}

// sampleWeights returns per-sample weights: uniform, or inversely
// proportional to class frequency when class_weight is "balanced".
func (lr *LogisticRegression) sampleWeights(y mat.Matrix, nSamples int) []float64 {
	weights := make([]float64, nSamples)
	for i := range weights {
		weights[i] = 1.0
	}
	if lr.classWeight != "balanced" {
		return weights
	}

	counts := make(map[int]int)
	for i := 0; i < nSamples; i++ {
		counts[int(y.At(i, 0))]++
	}
	k := float64(len(counts))
	for i := 0; i < nSamples; i++ {
		count := counts[int(y.At(i, 0))]
		weights[i] = float64(nSamples) / (k * float64(count))
	}
	return weights
}

// indicator builds a 0/1 target slice marking rows whose label equals class.
func (lr *LogisticRegression) indicator(y mat.Matrix, class int) []float64 {
	rows, _ := y.Dims()
	target := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if int(y.At(i, 0)) == class {
			target[i] = 1.0
		}
	}
	return target
}

func (lr *LogisticRegression) initializeWeights(nFeatures int) {
	nModels := len(lr.classes)
	if nModels == 2 {
		nModels = 1
	}

	lr.coef = make([][]float64, nModels)
	for i := range lr.coef {
		lr.coef[i] = make([]float64, nFeatures)
		for j := range lr.coef[i] {
			lr.coef[i][j] = lr.rng.NormFloat64() * 0.01
		}
	}
	lr.intercept = make([]float64, nModels)
	lr.nIter = make([]int, nModels)
}

// regGradient returns the regularization term added to the weight gradient.
func (lr *LogisticRegression) regGradient(w float64) float64 {
	lambda := 1.0 / lr.c
	switch lr.penalty {
	case "l2":
		return lambda * w
	case "l1":
		return lambda * sign(w)
	case "elasticnet":
		return lambda * (lr.l1Ratio*sign(w) + (1-lr.l1Ratio)*w)
	default:
		return 0
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// fitSigmoid runs weighted gradient descent for a single sigmoid model,
// storing the result at model index idx.
func (lr *LogisticRegression) fitSigmoid(X mat.Matrix, target, sampleWeight []float64, idx int) error {
	nSamples, nFeatures := X.Dims()
	weights := lr.coef[idx]
	intercept := &lr.intercept[idx]

	var totalWeight float64
	for _, w := range sampleWeight {
		totalWeight += w
	}

	const baseLearningRate = 1.0
	converged := false

	for iter := 0; iter < lr.maxIter; iter++ {
		gradWeights := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sampleWeight[i] * (sigmoid(z) - target[i])
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/totalWeight + lr.regGradient(weights[j])
		}
		gradIntercept /= totalWeight

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			*intercept -= learningRate * gradIntercept
		}

		lr.nIter[idx] = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, ""))
	}
	return nil
}

// fitOneVsRest trains one sigmoid model per class against the rest.
func (lr *LogisticRegression) fitOneVsRest(X, y mat.Matrix, sampleWeight []float64) error {
	for idx, class := range lr.classes {
		if err := lr.fitSigmoid(X, lr.indicator(y, class), sampleWeight, idx); err != nil {
			return errors.Wrapf(err, "one-vs-rest fit failed for class %d", class)
		}
	}
	return nil
}

// fitSoftmax trains a joint multinomial model over all classes.
func (lr *LogisticRegression) fitSoftmax(X, y mat.Matrix, sampleWeight []float64) error {
	nSamples, nFeatures := X.Dims()
	nClasses := len(lr.classes)

	classIndex := make(map[int]int, nClasses)
	for idx, class := range lr.classes {
		classIndex[class] = idx
	}

	var totalWeight float64
	for _, w := range sampleWeight {
		totalWeight += w
	}

	const baseLearningRate = 1.0
	converged := false
	probs := make([]float64, nClasses)

	for iter := 0; iter < lr.maxIter; iter++ {
		gradWeights := make([][]float64, nClasses)
		for c := range gradWeights {
			gradWeights[c] = make([]float64, nFeatures)
		}
		gradIntercept := make([]float64, nClasses)

		for i := 0; i < nSamples; i++ {
			lr.softmaxRow(X, i, probs)
			targetClass := classIndex[int(y.At(i, 0))]

			for c := 0; c < nClasses; c++ {
				residual := probs[c]
				if c == targetClass {
					residual -= 1.0
				}
				residual *= sampleWeight[i]
				gradIntercept[c] += residual
				for j := 0; j < nFeatures; j++ {
					gradWeights[c][j] += residual * X.At(i, j)
				}
			}
		}

		maxGrad := 0.0
		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for c := 0; c < nClasses; c++ {
			for j := 0; j < nFeatures; j++ {
				g := gradWeights[c][j]/totalWeight + lr.regGradient(lr.coef[c][j])
				lr.coef[c][j] -= learningRate * g
				if math.Abs(g) > maxGrad {
					maxGrad = math.Abs(g)
				}
			}
			gi := gradIntercept[c] / totalWeight
			if lr.fitIntercept {
				lr.intercept[c] -= learningRate * gi
			}
			if math.Abs(gi) > maxGrad {
				maxGrad = math.Abs(gi)
			}
		}

		for c := range lr.nIter {
			lr.nIter[c] = iter + 1
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, ""))
	}
	return nil
}

// softmaxRow fills probs with class probabilities for row i of X.
func (lr *LogisticRegression) softmaxRow(X mat.Matrix, i int, probs []float64) {
	maxScore := math.Inf(-1)
	for c := range probs {
		score := lr.intercept[c]
		for j := 0; j < lr.nFeatures; j++ {
			score += X.At(i, j) * lr.coef[c][j]
		}
		probs[c] = score
		if score > maxScore {
			maxScore = score
		}
	}

	var sum float64
	for c := range probs {
		probs[c] = math.Exp(probs[c] - maxScore)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
}

func (lr *LogisticRegression) checkPredictInput(X mat.Matrix, method string) (int, error) {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return 0, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures {
		return 0, errors.NewDimensionError("LogisticRegression."+method, lr.nFeatures, nFeatures, 1)
	}
	return nSamples, nil
}

// Predict returns the predicted class label for each row of X as a single
// column.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkPredictInput(X, "Predict")
	if err != nil {
		return nil, err
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	binary := len(lr.classes) == 2

	parallel.ParallelizeWithThreshold(nSamples, lr.nJobs, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if binary {
				z := lr.intercept[0]
				for j := 0; j < lr.nFeatures; j++ {
					z += X.At(i, j) * lr.coef[0][j]
				}
				if sigmoid(z) >= 0.5 {
					predictions.Set(i, 0, float64(lr.classes[1]))
				} else {
					predictions.Set(i, 0, float64(lr.classes[0]))
				}
				continue
			}

			best, bestScore := 0, math.Inf(-1)
			for c := range lr.classes {
				score := lr.intercept[c]
				for j := 0; j < lr.nFeatures; j++ {
					score += X.At(i, j) * lr.coef[c][j]
				}
				if score > bestScore {
					bestScore = score
					best = c
				}
			}
			predictions.Set(i, 0, float64(lr.classes[best]))
		}
	})

	return predictions, nil
}

// PredictProba returns per-class probability estimates, one column per
// class in Classes() order.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkPredictInput(X, "PredictProba")
	if err != nil {
		return nil, err
	}

	nClasses := len(lr.classes)
	probas := mat.NewDense(nSamples, nClasses, nil)
	binary := nClasses == 2

	parallel.ParallelizeWithThreshold(nSamples, lr.nJobs, parallelThreshold, func(start, end int) {
		probs := make([]float64, nClasses)
		for i := start; i < end; i++ {
			if binary {
				z := lr.intercept[0]
				for j := 0; j < lr.nFeatures; j++ {
					z += X.At(i, j) * lr.coef[0][j]
				}
				p := sigmoid(z)
				probas.Set(i, 0, 1-p)
				probas.Set(i, 1, p)
				continue
			}

			lr.softmaxRow(X, i, probs)
			for c := 0; c < nClasses; c++ {
				probas.Set(i, c, probs[c])
			}
		}
	})

	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the sorted unique class labels seen during fitting, or
// nil if the model is unfitted.
func (lr *LogisticRegression) Classes() []int {
	if !lr.state.IsFitted() {
		return nil
	}
	out := make([]int, len(lr.classes))
	copy(out, lr.classes)
	return out
}

// Coef returns the learned coefficients, one row per model (a single row
// for binary problems), or nil if the model is unfitted.
func (lr *LogisticRegression) Coef() [][]float64 {
	if !lr.state.IsFitted() {
		return nil
	}
	out := make([][]float64, len(lr.coef))
	for i, row := range lr.coef {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Intercept returns the learned intercept terms, or nil if unfitted.
func (lr *LogisticRegression) Intercept() []float64 {
	if !lr.state.IsFitted() {
		return nil
	}
	out := make([]float64, len(lr.intercept))
	copy(out, lr.intercept)
	return out
}

// NIter returns the iteration count used per model, or nil if unfitted.
func (lr *LogisticRegression) NIter() []int {
	if !lr.state.IsFitted() {
		return nil
	}
	out := make([]int, len(lr.nIter))
	copy(out, lr.nIter)
	return out
}

// GetParams returns the hyperparameters under their scikit-learn names.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":           lr.penalty,
		"dual":              lr.dual,
		"tol":               lr.tol,
		"C":                 lr.c,
		"fit_intercept":     lr.fitIntercept,
		"intercept_scaling": lr.interceptScaling,
		"class_weight":      lr.classWeight,
		"random_state":      lr.randomState,
		"solver":            lr.solver,
		"max_iter":          lr.maxIter,
		"multi_class":       lr.multiClass,
		"verbose":           lr.verbose,
		"warm_start":        lr.warmStart,
		"n_jobs":            lr.nJobs,
		"l1_ratio":          lr.l1Ratio,
	}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
