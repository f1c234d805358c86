package generator

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Model names a ballot generator.
type Model string

const (
	ModelImpartialCulture          Model = "impartial-culture"
	ModelImpartialAnonymousCulture Model = "impartial-anonymous-culture"
	ModelPlackettLuce              Model = "plackett-luce"
	ModelBradleyTerry              Model = "bradley-terry"
	ModelOneDimSpatial             Model = "1d-spatial"
	ModelAlternatingCrossover      Model = "alternating-crossover"
)

// Models lists every supported generator model.
func Models() []Model {
	return []Model{
		ModelImpartialCulture,
		ModelImpartialAnonymousCulture,
		ModelPlackettLuce,
		ModelBradleyTerry,
		ModelOneDimSpatial,
		ModelAlternatingCrossover,
	}
}

// Spec is the declarative form of a generator, loadable from a YAML file.
// The slate fields are only consulted by the slate-based models.
type Spec struct {
	Model        Model    `yaml:"model"`
	Ballots      int      `yaml:"ballots"`
	Candidates   []string `yaml:"candidates"`
	BallotLength int      `yaml:"ballot_length"`

	Shares          map[string]float64            `yaml:"shares,omitempty"`
	Support         map[string]map[string]float64 `yaml:"support,omitempty"`
	SlateCandidates map[string][]string           `yaml:"slate_candidates,omitempty"`
	CrossRates      map[string]map[string]float64 `yaml:"cross_rates,omitempty"`
}

// ParseSpec strictly decodes a generator spec document.
func ParseSpec(r io.Reader) (Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Spec{}, fmt.Errorf("read generator spec: %w", err)
	}

	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&spec); err != nil {
		if err == io.EOF {
			return Spec{}, fmt.Errorf("generator spec is empty")
		}
		return Spec{}, fmt.Errorf("strict generator spec parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Spec{}, fmt.Errorf("generator spec contains multiple documents or trailing content")
	}
	return spec, nil
}

func (s Spec) slateParams() SlateParams {
	return SlateParams{Shares: s.Shares, Support: s.Support}
}

// Build constructs the generator the spec describes.
func (s Spec) Build(opts ...Option) (Generator, error) {
	switch s.Model {
	case ModelImpartialCulture:
		return NewImpartialCulture(s.Ballots, s.Candidates, opts...)
	case ModelImpartialAnonymousCulture:
		return NewImpartialAnonymousCulture(s.Ballots, s.Candidates, opts...)
	case ModelPlackettLuce:
		return NewPlackettLuce(s.Ballots, s.Candidates, s.BallotLength, s.slateParams(), opts...)
	case ModelBradleyTerry:
		return NewBradleyTerry(s.Ballots, s.Candidates, s.slateParams(), opts...)
	case ModelOneDimSpatial:
		return NewOneDimSpatial(s.Ballots, s.Candidates, opts...)
	case ModelAlternatingCrossover:
		return NewAlternatingCrossover(s.Ballots, s.Candidates, s.BallotLength, CrossoverParams{
			SlateParams: s.slateParams(),
			Candidates:  s.SlateCandidates,
			Rates:       s.CrossRates,
		}, opts...)
	default:
		return nil, fmt.Errorf("unknown generator model %q (known: %v)", s.Model, Models())
	}
}
