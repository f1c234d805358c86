package election

import (
	"fmt"

	"github.com/mggg/votekit/internal/ballot"
)

// Method names an election system.
type Method string

const (
	MethodSTV     Method = "stv"
	MethodLimited Method = "limited"
	MethodBloc    Method = "bloc"
	MethodSNTV    Method = "sntv"
	MethodHybrid  Method = "hybrid"
	MethodTopTwo  Method = "top-two"
)

// Methods lists every supported election method.
func Methods() []Method {
	return []Method{MethodSTV, MethodLimited, MethodBloc, MethodSNTV, MethodHybrid, MethodTopTwo}
}

// IsValid reports whether the method is one votekit implements.
func (m Method) IsValid() bool {
	for _, known := range Methods() {
		if m == known {
			return true
		}
	}
	return false
}

// Params carries method-specific knobs.
type Params struct {
	Seats    int // all methods; top-two fixes it to 1
	K        int // limited: approvals per ballot
	R1Cutoff int // hybrid: surviving candidates after the SNTV cut
}

// NewSystem constructs the named election system over the profile.
func NewSystem(method Method, profile *ballot.PreferenceProfile, params Params, opts ...Option) (System, error) {
	switch method {
	case MethodSTV:
		return NewSTV(profile, params.Seats, opts...)
	case MethodLimited:
		return NewLimited(profile, params.Seats, params.K, opts...)
	case MethodBloc:
		return NewBloc(profile, params.Seats, opts...)
	case MethodSNTV:
		return NewSNTV(profile, params.Seats, opts...)
	case MethodHybrid:
		return NewHybrid(profile, params.R1Cutoff, params.Seats, opts...)
	case MethodTopTwo:
		return NewTopTwo(profile, opts...)
	default:
		return nil, fmt.Errorf("unknown election method %q (known: %v)", method, Methods())
	}
}
