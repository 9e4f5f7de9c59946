package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func pattern(label int) []float64 {
	x := make([]float64, Inputs)
	for i := label * 50; i < label*50+120; i++ {
		x[i] = 1
	}
	return x
}

func TestProbabilitiesSumToOne(t *testing.T) {
	m := New(DefaultConfig())
	p, err := m.Probabilities(pattern(3))
	require.NoError(t, err)
	require.Len(t, p, Classes)
	assert.InDelta(t, 1.0, floats.Sum(p), 1e-6)
	for _, v := range p {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestSameSeedSameNetwork(t *testing.T) {
	a, _ := New(DefaultConfig()).Probabilities(pattern(1))
	b, _ := New(DefaultConfig()).Probabilities(pattern(1))
	assert.Equal(t, a, b)
}

func TestTrainingLowersLoss(t *testing.T) {
	m := New(DefaultConfig())

	first, err := m.TrainStep(pattern(2), 2)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		for label := 0; label < 4; label++ {
			_, err := m.TrainStep(pattern(label), label)
			require.NoError(t, err)
		}
	}
	last, err := m.TrainStep(pattern(2), 2)
	require.NoError(t, err)
	assert.Less(t, last, first)

	for label := 0; label < 4; label++ {
		digit, confidence, err := m.Predict(pattern(label))
		require.NoError(t, err)
		assert.Equal(t, label, digit)
		assert.Greater(t, confidence, 0.5)
	}
}

func TestInvalidInput(t *testing.T) {
	m := New(DefaultConfig())

	_, err := m.Probabilities(make([]float64, 10))
	assert.Error(t, err)

	_, err = m.TrainStep(pattern(0), 10)
	assert.Error(t, err)
	_, err = m.TrainStep(make([]float64, 3), 1)
	assert.Error(t, err)
}
