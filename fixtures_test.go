package hmm

import "testing"

// miniWeather is a two-state model: does someone go for a walk on hot or cold days.
func miniWeather(t *testing.T) *Model {
	t.Helper()
	m, err := New(
		[]string{"no-walk", "walk"},
		[]string{"hot", "cold"},
		[]float64{0.6, 0.4},
		[][]float64{{0.55, 0.45}, {0.3, 0.7}},
		[][]float64{{0.35, 0.65}, {0.8, 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var (
	miniSequence   = []string{"walk", "walk", "no-walk", "no-walk"}
	miniLikelihood = 0.07352896140625
	miniBestPath   = []string{"hot", "hot", "cold", "cold"}
)

var (
	fullSymbols = []string{"umbrella", "sunglasses", "coat", "shorts"}
	fullStates  = []string{"sunny", "cloudy", "rainy", "snowy"}
	fullPrior   = []float64{0.4, 0.3, 0.2, 0.1}
	fullTrans   = [][]float64{
		{0.6, 0.25, 0.1, 0.05},
		{0.3, 0.4, 0.25, 0.05},
		{0.15, 0.35, 0.45, 0.05},
		{0.1, 0.2, 0.2, 0.5},
	}
	fullEmission = [][]float64{
		{0.05, 0.6, 0.05, 0.3},
		{0.2, 0.2, 0.4, 0.2},
		{0.7, 0.02, 0.25, 0.03},
		{0.1, 0.05, 0.8, 0.05},
	}
	fullSequence = []string{
		"sunglasses", "shorts", "sunglasses", "coat",
		"umbrella", "umbrella", "coat", "coat",
		"coat", "umbrella", "sunglasses", "shorts",
		"shorts", "coat", "umbrella", "sunglasses",
	}
	fullBestPath = []string{
		"sunny", "sunny", "sunny", "cloudy",
		"rainy", "rainy", "snowy", "snowy",
		"snowy", "rainy", "sunny", "sunny",
		"sunny", "cloudy", "rainy", "sunny",
	}
	fullLikelihood = 5.331021023119379e-10
	fullLogProb    = -28.672915686002842
)

// fullWeather is a four-state model with a four-symbol alphabet.
func fullWeather(t *testing.T) *Model {
	t.Helper()
	m, err := New(fullSymbols, fullStates, fullPrior, fullTrans, fullEmission)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
