package pipeline

import "errors"

// The pipeline reports rejections through sentinel errors so callers can
// map them to user-facing outcomes without string matching.
var (
	// ErrNotATree means the scene gate or semantic oracle ruled the photo
	// out before any measurement ran.
	ErrNotATree = errors.New("the photo does not appear to show a tree")

	// ErrColorValidation means color-rule segmentation ran (no semantic
	// oracle available) and the color evidence does not support a tree.
	ErrColorValidation = errors.New("color evidence does not support a tree")

	// ErrSegmentationEmpty means a mask was produced but covers nothing.
	ErrSegmentationEmpty = errors.New("segmentation produced an empty mask")

	// ErrStructuralRejection means a trunk was found but failed a
	// structural plausibility check.
	ErrStructuralRejection = errors.New("trunk failed structural validation")

	// ErrImplausibleResult means fusion produced a circumference outside
	// the plausible range for a standing tree.
	ErrImplausibleResult = errors.New("measured circumference is implausible")

	// ErrManualInput means user-supplied points or distances were unusable.
	ErrManualInput = errors.New("invalid manual measurement input")
)
