// Package trunk localizes the tree trunk in a photograph: it finds the
// trunk's center column, measures its pixel width at breast height, and
// derives the overall tree bounding box.
package trunk

import "treemeter/pkg/geometry"

// Bounds describes the localized tree. Created once per run and read-only
// downstream.
type Bounds struct {
	Box             geometry.RectInt `json:"box"`               // whole tree region
	CenterX         int              `json:"center_x"`          // trunk center column
	LeftEdge        int              `json:"left_edge"`         // trunk left edge at breast height
	RightEdge       int              `json:"right_edge"`        // trunk right edge at breast height
	WidthPx         float64          `json:"width_px"`          // trunk width in pixels
	BreastHeightY   int              `json:"breast_height_y"`   // row used for the width measurement
	MedianWidthPx   float64          `json:"median_width_px"`   // width from the edge-scan median
	GradientWidthPx float64          `json:"gradient_width_px"` // width from the gradient search (0 if unused)
}
