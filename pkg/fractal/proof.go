package fractal

import (
	"encoding/json"
)

// Proof is the fractal proof-of-work solution attached to a mined block.
type Proof struct {
	Nonce              uint64  `json:"nonce"`
	FractalSeed        string  `json:"fractal_seed"`
	SolutionPointReal  float64 `json:"solution_point_real"`
	SolutionPointImag  float64 `json:"solution_point_imag"`
	FractalDimension   float64 `json:"fractal_dimension"`
	FractalDataHash    string  `json:"fractal_data_hash"`
	Timestamp          float64 `json:"timestamp"`
}

// Center returns the proof's claimed solution point as a complex number.
func (p Proof) Center() complex128 {
	return complex(p.SolutionPointReal, p.SolutionPointImag)
}

// CanonicalJSON re-marshals the proof; used by callers that embed it in a
// larger canonical-hash payload.
func (p Proof) CanonicalJSON() ([]byte, error) {
	return json.Marshal(p)
}
