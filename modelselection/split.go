// Package modelselection provides dataset partitioning utilities for model
// evaluation.
package modelselection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/manufacturingnet/mlgo/pkg/errors"
)

// DefaultTestSize is the held-out fraction used when the caller does not
// specify one.
const DefaultTestSize = 0.25

// TrainTestSplit partitions X and y into randomized train and test subsets.
// testSize is the fraction of samples assigned to the test partition and
// must be in (0, 1); both partitions must end up non-empty. Rows are
// shuffled with the package-level math/rand source; the function takes no
// seed.
func TrainTestSplit(X, y mat.Matrix, testSize float64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "nil input matrix")
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if yRows != nSamples {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", nSamples, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(float64(nSamples) * testSize)
	if nTest < 1 {
		nTest = 1
	}
	nTrain := nSamples - nTest
	if nTrain < 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "train partition would be empty; lower test_size or add samples")
	}

	perm := rand.Perm(nSamples)

	XTest = mat.NewDense(nTest, nFeatures, nil)
	yTest = mat.NewDense(nTest, yCols, nil)
	XTrain = mat.NewDense(nTrain, nFeatures, nil)
	yTrain = mat.NewDense(nTrain, yCols, nil)

	copyRow := func(dstX, dstY *mat.Dense, dstRow, srcRow int) {
		for j := 0; j < nFeatures; j++ {
			dstX.Set(dstRow, j, X.At(srcRow, j))
		}
		for j := 0; j < yCols; j++ {
			dstY.Set(dstRow, j, y.At(srcRow, j))
		}
	}

	for i, src := range perm {
		if i < nTest {
			copyRow(XTest, yTest, i, src)
		} else {
			copyRow(XTrain, yTrain, i-nTest, src)
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}
