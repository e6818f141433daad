package review

import "errors"

// ErrInvalidSlideNumber indicates a slide number below 1.
var ErrInvalidSlideNumber = errors.New("invalid slide number")

// ErrInvalidDecision indicates a decision outside accepted/rejected/edited.
var ErrInvalidDecision = errors.New("invalid decision")

// ErrNoAnalysis indicates the requested slide has no analysis entry.
var ErrNoAnalysis = errors.New("slide analysis not found")

// ErrNoOutput indicates the deck's output file was never generated.
var ErrNoOutput = errors.New("output not generated")
