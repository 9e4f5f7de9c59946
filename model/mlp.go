// Package model is the small multilayer perceptron behind the reference
// classifier server: 784 inputs, ReLU hidden layers, softmax over 10 digits.
package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	Inputs  = 28 * 28
	Classes = 10
)

// Config of the network
type Config struct {
	Hidden       []int
	LearningRate float64
	Seed         int64
}

func DefaultConfig() Config {
	return Config{
		Hidden:       []int{128},
		LearningRate: 0.1,
		Seed:         42,
	}
}

// MLP is trained one example at a time with plain SGD. It is not safe for
// concurrent use.
type MLP struct {
	cfg     Config
	weights []*mat.Dense
	biases  []*mat.Dense
}

// New builds a network with Xavier uniform weights and zero biases.
func New(cfg Config) *MLP {
	rng := rand.New(rand.NewSource(cfg.Seed))
	sizes := append(append([]int{Inputs}, cfg.Hidden...), Classes)

	m := &MLP{cfg: cfg}
	for i := 0; i < len(sizes)-1; i++ {
		fanIn, fanOut := sizes[i], sizes[i+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		data := make([]float64, fanIn*fanOut)
		for j := range data {
			data[j] = (rng.Float64()*2 - 1) * limit
		}
		m.weights = append(m.weights, mat.NewDense(fanIn, fanOut, data))
		m.biases = append(m.biases, mat.NewDense(1, fanOut, nil))
	}
	return m
}

func checkInput(x []float64) (*mat.Dense, error) {
	if len(x) != Inputs {
		return nil, errors.Errorf("expected %d inputs, got %d", Inputs, len(x))
	}
	clipped := make([]float64, Inputs)
	for i, v := range x {
		clipped[i] = math.Min(1, math.Max(0, v))
	}
	return mat.NewDense(1, Inputs, clipped), nil
}

// forward returns the pre-activations and activations of every layer;
// activations[0] is the input.
func (m *MLP) forward(x *mat.Dense) (pre, act []*mat.Dense) {
	act = []*mat.Dense{x}
	last := len(m.weights) - 1
	for i, w := range m.weights {
		z := &mat.Dense{}
		z.Mul(act[i], w)
		z.Add(z, m.biases[i])
		pre = append(pre, z)

		a := mat.DenseCopyOf(z)
		if i < last {
			a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, a)
		} else {
			softmax(a.RawRowView(0))
		}
		act = append(act, a)
	}
	return pre, act
}

func softmax(z []float64) {
	top := floats.Max(z)
	for i := range z {
		z[i] = math.Exp(z[i] - top)
	}
	sum := floats.Sum(z) + 1e-8
	floats.Scale(1/sum, z)
}

// Probabilities returns one probability per class.
func (m *MLP) Probabilities(x []float64) ([]float64, error) {
	in, err := checkInput(x)
	if err != nil {
		return nil, err
	}
	_, act := m.forward(in)
	out := make([]float64, Classes)
	copy(out, act[len(act)-1].RawRowView(0))
	return out, nil
}

// Predict returns the most probable digit and its probability.
func (m *MLP) Predict(x []float64) (digit int, confidence float64, err error) {
	p, err := m.Probabilities(x)
	if err != nil {
		return 0, 0, err
	}
	digit = floats.MaxIdx(p)
	return digit, p[digit], nil
}

// TrainStep runs one SGD step on a single example and returns its
// cross-entropy loss before the update.
func (m *MLP) TrainStep(x []float64, label int) (float64, error) {
	if label < 0 || label >= Classes {
		return 0, errors.Errorf("label %d out of range", label)
	}
	in, err := checkInput(x)
	if err != nil {
		return 0, err
	}

	pre, act := m.forward(in)
	yHat := act[len(act)-1].RawRowView(0)
	loss := -math.Log(yHat[label] + 1e-8)

	// softmax + cross-entropy gradient
	dA := mat.DenseCopyOf(act[len(act)-1])
	dA.Set(0, label, dA.At(0, label)-1)

	last := len(m.weights) - 1
	for i := last; i >= 0; i-- {
		dZ := dA
		if i < last {
			dZ = &mat.Dense{}
			dZ.Apply(func(_, c int, v float64) float64 {
				if pre[i].At(0, c) > 0 {
					return v
				}
				return 0
			}, dA)
		}

		dW := &mat.Dense{}
		dW.Mul(act[i].T(), dZ)

		next := &mat.Dense{}
		next.Mul(dZ, m.weights[i].T())

		dW.Scale(m.cfg.LearningRate, dW)
		m.weights[i].Sub(m.weights[i], dW)

		db := mat.DenseCopyOf(dZ)
		db.Scale(m.cfg.LearningRate, db)
		m.biases[i].Sub(m.biases[i], db)

		dA = next
	}

	return loss, nil
}
