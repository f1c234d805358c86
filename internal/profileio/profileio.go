// Package profileio reads and writes preference profiles as YAML documents.
// The on-disk schema lists the candidate slate and the ballots, one entry per
// distinct ranking:
//
//	candidates: [A, B, C]
//	ballots:
//	  - ranking: [[A], [B, C]]
//	    weight: 3
//	  - ranking: [[B]]
//	    weight: 1/2
//
// Weights are exact rationals, written as an integer or a "p/q" string.
package profileio

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/mggg/votekit/internal/ballot"
)

type profileDoc struct {
	Candidates []string    `yaml:"candidates,omitempty"`
	Ballots    []ballotDoc `yaml:"ballots"`
}

type ballotDoc struct {
	Ranking [][]string `yaml:"ranking"`
	Weight  ratValue   `yaml:"weight"`
}

// ratValue marshals a *big.Rat as an integer when the denominator is one and
// as "p/q" otherwise.
type ratValue struct {
	rat *big.Rat
}

func (r ratValue) MarshalYAML() (any, error) {
	if r.rat == nil {
		return nil, fmt.Errorf("ballot weight is nil")
	}
	if r.rat.IsInt() && r.rat.Num().IsInt64() {
		return r.rat.Num().Int64(), nil
	}
	return r.rat.RatString(), nil
}

func (r *ratValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("weight must be an integer or a \"p/q\" string (line %d)", node.Line)
	}
	rat, ok := new(big.Rat).SetString(node.Value)
	if !ok {
		return fmt.Errorf("invalid weight %q (line %d)", node.Value, node.Line)
	}
	r.rat = rat
	return nil
}

// ReadProfile strictly decodes a profile document from r.
func ReadProfile(r io.Reader) (*ballot.PreferenceProfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var doc profileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("profile document is empty")
		}
		return nil, fmt.Errorf("strict profile parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("profile file contains multiple documents or trailing content")
	}

	if len(doc.Ballots) == 0 {
		return nil, fmt.Errorf("profile document has no ballots")
	}

	ballots := make([]ballot.Ballot, 0, len(doc.Ballots))
	for i, bd := range doc.Ballots {
		ranking := make([]ballot.Rank, 0, len(bd.Ranking))
		for _, names := range bd.Ranking {
			ranking = append(ranking, ballot.NewRank(names...))
		}
		b := ballot.New(ranking, bd.Weight.rat)
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i, err)
		}
		ballots = append(ballots, b)
	}

	var opts []ballot.ProfileOption
	if len(doc.Candidates) > 0 {
		opts = append(opts, ballot.WithCandidates(doc.Candidates...))
	}
	profile, err := ballot.NewProfile(ballots, opts...)
	if err != nil {
		return nil, fmt.Errorf("build profile: %w", err)
	}
	return profile, nil
}

// ReadProfileFile reads a profile document from path.
func ReadProfileFile(path string) (*ballot.PreferenceProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	return ReadProfile(f)
}

// WriteProfile encodes the profile to w. Ballots are condensed first so
// identical rankings collapse into one weighted entry.
func WriteProfile(w io.Writer, profile *ballot.PreferenceProfile) error {
	condensed := profile.Condense()

	doc := profileDoc{Candidates: condensed.Candidates()}
	for _, b := range condensed.Ballots() {
		ranking := make([][]string, 0, len(b.Ranking))
		for _, rank := range b.Ranking {
			ranking = append(ranking, []string(rank))
		}
		doc.Ballots = append(doc.Ballots, ballotDoc{
			Ranking: ranking,
			Weight:  ratValue{rat: b.Weight},
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return enc.Close()
}

// WriteProfileFile atomically writes the profile document to path. The file
// is replaced in one rename so readers never observe a partial document.
func WriteProfileFile(path string, profile *ballot.PreferenceProfile) error {
	var buf bytes.Buffer
	if err := WriteProfile(&buf, profile); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}
