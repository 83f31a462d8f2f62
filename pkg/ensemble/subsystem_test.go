package ensemble

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/nidsguard/pkg/detectors"
	"github.com/hed1ad/nidsguard/pkg/detectors/iforest"
)

func isolationFactory(maxSamples int, contamination float64) detectors.Detector {
	return iforest.New(
		iforest.WithTrees(50),
		iforest.WithSampleSize(maxSamples),
		iforest.WithContamination(contamination),
		iforest.WithSeed(42),
	)
}

func TestFitSubsystemContaminationSweep(t *testing.T) {
	for _, n := range []int{1, 2, 5, 40} {
		reps := generateRows(n, 3, 0)
		for _, c := range []float64{0, 0.1, 0.2, 0.3, 0.45} {
			s, err := fitSubsystem(AttackClass, c, 100, reps, isolationFactory)
			require.NoError(t, err, "n=%d c=%v", n, c)
			assert.Equal(t, c, s.Contamination())
			assert.Len(t, s.Representatives(), n)
		}
	}
}

func TestFitSubsystemBoundsSampleSize(t *testing.T) {
	var got int
	factory := func(maxSamples int, contamination float64) detectors.Detector {
		got = maxSamples
		return isolationFactory(maxSamples, contamination)
	}

	_, err := fitSubsystem(NormalClass, 0.1, 100, generateRows(7, 2, 0), factory)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	_, err = fitSubsystem(NormalClass, 0.1, 5, generateRows(7, 2, 0), factory)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestFitSubsystemDegenerate(t *testing.T) {
	_, err := fitSubsystem(AttackClass, 0.1, 100, nil, isolationFactory)
	assert.ErrorIs(t, err, ErrDegenerateClass)
	assert.EqualError(t, err, "no attack rows to train the attack subsystem on")
}

func TestSubsystemVerdicts(t *testing.T) {
	reps := generateRows(60, 2, 0)
	s, err := fitSubsystem(NormalClass, 0.05, 100, reps, isolationFactory)
	require.NoError(t, err)

	got, err := s.Verdicts([][]float64{{0, 0}, {400, -400}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, got, "centre is an inlier, far point is not")

	scores, err := s.Scores([][]float64{{0, 0}, {400, -400}})
	require.NoError(t, err)
	assert.Less(t, scores[0], scores[1])
	assert.Equal(t, NormalClass, s.Class())
}

// generateRows draws n gaussian rows around centre.
func generateRows(n, features int, centre float64) [][]float64 {
	rng := rand.New(rand.NewSource(int64(n*31 + features)))
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, features)
		for j := range data[i] {
			data[i][j] = centre + rng.NormFloat64()
		}
	}
	return data
}
