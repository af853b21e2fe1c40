package session

import "fmt"

// Phase is the pipeline stage a session is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExtractingColors
	PhaseRecommending
	PhaseSynthesizingImage
	PhaseReady
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseIdle:              "Idle",
	PhaseExtractingColors:  "ExtractingColors",
	PhaseRecommending:      "Recommending",
	PhaseSynthesizingImage: "SynthesizingImage",
	PhaseReady:             "Ready",
	PhaseFailed:            "Failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Busy reports whether a pipeline step is in flight.
func (p Phase) Busy() bool {
	return p == PhaseExtractingColors || p == PhaseRecommending || p == PhaseSynthesizingImage
}
