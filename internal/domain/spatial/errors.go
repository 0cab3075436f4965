package spatial

import "errors"

// Sentinel errors for binning and density estimation.
var (
	ErrInvalidBins   = errors.New("spatial: bin counts must be positive")
	ErrInvalidBounds = errors.New("spatial: bounds must have positive extent")
	ErrInvalidLevels = errors.New("spatial: level count must be positive and thresh in [0, 1)")
	ErrTooFewPoints  = errors.New("spatial: too few points for a density estimate")
	ErrDegenerate    = errors.New("spatial: points have zero spread along an axis")
)
