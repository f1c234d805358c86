package generator

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecAndBuild(t *testing.T) {
	spec, err := ParseSpec(strings.NewReader(`
model: plackett-luce
ballots: 100
candidates: [A, B, X, Y]
ballot_length: 2
shares:
  alpha: 0.7
  beta: 0.3
support:
  alpha: {A: 0.6, B: 0.4, X: 0, Y: 0}
  beta: {A: 0, B: 0, X: 0.5, Y: 0.5}
`))
	require.NoError(t, err)
	assert.Equal(t, ModelPlackettLuce, spec.Model)

	gen, err := spec.Build(WithSeed(7))
	require.NoError(t, err)

	profile, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, big.NewRat(100, 1), profile.TotalWeight())
	for _, b := range profile.Ballots() {
		assert.Len(t, b.Ranking, 2)
	}
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: "empty",
		},
		{
			name:    "unknown key",
			input:   "model: impartial-culture\nballots: 10\ncandidatess: [A]\n",
			wantErr: "strict generator spec parse error",
		},
		{
			name:    "multiple documents",
			input:   "model: impartial-culture\n---\nmodel: 1d-spatial\n",
			wantErr: "multiple documents",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildUnknownModel(t *testing.T) {
	_, err := Spec{Model: "urn", Ballots: 10, Candidates: []string{"A"}}.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator model")
}

func TestBuildEveryModel(t *testing.T) {
	base := Spec{
		Ballots:    40,
		Candidates: []string{"A", "B", "X", "Y"},
		Shares:     map[string]float64{"alpha": 0.5, "beta": 0.5},
		Support: map[string]map[string]float64{
			"alpha": {"A": 0.6, "B": 0.4, "X": 0, "Y": 0},
			"beta":  {"A": 0, "B": 0, "X": 0.5, "Y": 0.5},
		},
		SlateCandidates: map[string][]string{"alpha": {"A", "B"}, "beta": {"X", "Y"}},
		CrossRates: map[string]map[string]float64{
			"alpha": {"alpha": 0.8, "beta": 0.2},
			"beta":  {"beta": 1.0, "alpha": 0},
		},
	}

	for _, model := range Models() {
		t.Run(string(model), func(t *testing.T) {
			spec := base
			spec.Model = model

			gen, err := spec.Build(WithSeed(3))
			require.NoError(t, err)

			profile, err := gen.Generate()
			require.NoError(t, err)
			assert.Positive(t, profile.NumBallots())
		})
	}
}
