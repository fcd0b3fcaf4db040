package pipeline

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Split holds a train/test partition of features and targets
type Split struct {
	TrainFeatures *FeatureMatrix
	TestFeatures  *FeatureMatrix
	TrainTargets  *TargetSet
	TestTargets   *TargetSet
}

// splitRows partitions features and targets with a seeded shuffle. The first
// ceil(testFraction*n) shuffled rows form the test set.
func splitRows(features *FeatureMatrix, targets *TargetSet, testFraction float64, seed uint64) (*Split, error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, &ArgumentError{msg: fmt.Sprintf("split: test fraction must be in (0, 1), got %g", testFraction)}
	}

	n := features.Rows()
	if targets.Len() != n {
		return nil, &ArgumentError{msg: fmt.Sprintf("split: %d feature rows but %d targets", n, targets.Len())}
	}

	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, &ArgumentError{msg: fmt.Sprintf("split: %d rows cannot be split with test fraction %g", n, testFraction)}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	return &Split{
		TrainFeatures: selectRows(features, trainIdx),
		TestFeatures:  selectRows(features, testIdx),
		TrainTargets:  targets.subset(trainIdx),
		TestTargets:   targets.subset(testIdx),
	}, nil
}

func selectRows(m *FeatureMatrix, idx []int) *FeatureMatrix {
	out := mat.NewDense(len(idx), m.Cols(), nil)
	for k, i := range idx {
		out.SetRow(k, m.Row(i))
	}
	return &FeatureMatrix{Columns: append([]string(nil), m.Columns...), Data: out}
}
