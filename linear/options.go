package linear

// Option configures a LogisticRegression.
type Option func(*LogisticRegression)

// WithPenalty sets the regularization type: "l1", "l2", "elasticnet" or
// "none".
func WithPenalty(penalty string) Option {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithDual enables the dual formulation (liblinear with l2 only).
func WithDual(dual bool) Option {
	return func(lr *LogisticRegression) {
		lr.dual = dual
	}
}

// WithTol sets the convergence tolerance.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithFitIntercept sets whether an intercept term is fitted.
func WithFitIntercept(fit bool) Option {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithInterceptScaling sets the synthetic-feature scale used by liblinear.
func WithInterceptScaling(scaling float64) Option {
	return func(lr *LogisticRegression) {
		lr.interceptScaling = scaling
	}
}

// WithClassWeight sets the class weighting scheme: "" or "balanced".
func WithClassWeight(weight string) Option {
	return func(lr *LogisticRegression) {
		lr.classWeight = weight
	}
}

// WithRandomState seeds weight initialization. Negative values leave the
// generator unseeded.
func WithRandomState(seed int64) Option {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// WithSolver sets the optimization solver name.
func WithSolver(solver string) Option {
	return func(lr *LogisticRegression) {
		lr.solver = solver
	}
}

// WithMaxIter sets the iteration cap.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithMultiClass sets the multi-class strategy: "auto", "ovr" or
// "multinomial".
func WithMultiClass(multiClass string) Option {
	return func(lr *LogisticRegression) {
		lr.multiClass = multiClass
	}
}

// WithVerbose sets the verbosity level.
func WithVerbose(verbose int) Option {
	return func(lr *LogisticRegression) {
		lr.verbose = verbose
	}
}

// WithWarmStart reuses the previous solution as initialization on refit.
func WithWarmStart(warm bool) Option {
	return func(lr *LogisticRegression) {
		lr.warmStart = warm
	}
}

// WithNJobs hints the worker count for batch prediction. Zero or negative
// selects one worker per CPU core.
func WithNJobs(n int) Option {
	return func(lr *LogisticRegression) {
		lr.nJobs = n
	}
}

// WithL1Ratio sets the elastic-net mixing parameter in [0, 1].
func WithL1Ratio(ratio float64) Option {
	return func(lr *LogisticRegression) {
		lr.l1Ratio = ratio
	}
}
