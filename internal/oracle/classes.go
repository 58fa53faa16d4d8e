package oracle

// COCOClasses maps SSD MobileNet class IDs to names. Only the subset the
// pipeline cares about is listed; unknown IDs are skipped by the adapter.
var COCOClasses = map[int]string{
	1:  "person",
	2:  "bicycle",
	3:  "car",
	4:  "motorcycle",
	6:  "bus",
	8:  "truck",
	15: "bench",
	16: "bird",
	17: "cat",
	18: "dog",
	19: "horse",
	20: "sheep",
	21: "cow",
	31: "handbag",
	32: "tie",
	33: "suitcase",
	41: "skateboard",
	44: "bottle",
	47: "cup",
	49: "knife",
	51: "bowl",
	53: "apple",
	55: "orange",
	57: "carrot",
	59: "pizza",
	61: "cake",
	62: "chair",
	63: "couch",
	64: "potted plant",
	65: "bed",
	67: "dining table",
	70: "toilet",
	72: "tv",
	73: "laptop",
	75: "remote",
	76: "keyboard",
	77: "cell phone",
	78: "microwave",
	79: "oven",
	80: "toaster",
	81: "sink",
	82: "refrigerator",
	84: "book",
	85: "clock",
	86: "vase",
}

// IndoorClasses are objects that, seen together, indicate an indoor scene.
var IndoorClasses = map[string]bool{
	"chair":        true,
	"couch":        true,
	"bed":          true,
	"dining table": true,
	"toilet":       true,
	"tv":           true,
	"laptop":       true,
	"remote":       true,
	"keyboard":     true,
	"cell phone":   true,
	"microwave":    true,
	"oven":         true,
	"toaster":      true,
	"sink":         true,
	"refrigerator": true,
	"book":         true,
	"clock":        true,
	"vase":         true,
	"cup":          true,
	"bowl":         true,
	"knife":        true,
}

// HardBlockClasses reject the photo on their own when detected above the
// hard-block confidence: none of these plausibly shares a frame with a tree
// being measured.
var HardBlockClasses = map[string]bool{
	"tv":           true,
	"laptop":       true,
	"microwave":    true,
	"oven":         true,
	"toaster":      true,
	"refrigerator": true,
	"couch":        true,
	"bed":          true,
	"toilet":       true,
	"pizza":        true,
	"cake":         true,
}

// VegetationClasses are ADE20K class IDs counted as tree tissue in a
// semantic segmentation map.
var VegetationClasses = map[int]bool{
	5:  true, // tree
	10: true, // grass
	18: true, // plant
	67: true, // flower
	73: true, // palm
}
