// Package species carries the read-only species calibration table: average
// mature dimensions and the crown/trunk allometry coefficients used by the
// distance estimators.
package species

import (
	"math"
	"sort"
	"strings"
)

// Descriptor describes one species. CrownCoeffA and CrownExpB parameterize
// the power law crownDiameterM = A × DBHcm^B; these are empirical fits and
// vary by region, so they live in data rather than code.
type Descriptor struct {
	Name        string  `json:"name"`
	AvgHeightM  float64 `json:"avg_height_m"`
	AvgDBHCm    float64 `json:"avg_dbh_cm"`
	MinDBHCm    float64 `json:"min_dbh_cm"`
	MaxDBHCm    float64 `json:"max_dbh_cm"`
	CrownCoeffA float64 `json:"crown_coeff_a"`
	CrownExpB   float64 `json:"crown_exp_b"`
}

// Generic is the fallback used when the species is unknown.
var Generic = Descriptor{
	Name:        "generic",
	AvgHeightM:  18,
	AvgDBHCm:    45,
	MinDBHCm:    8,
	MaxDBHCm:    180,
	CrownCoeffA: 0.78,
	CrownExpB:   0.62,
}

var table = map[string]Descriptor{
	"oak":    {Name: "oak", AvgHeightM: 21, AvgDBHCm: 75, MinDBHCm: 15, MaxDBHCm: 220, CrownCoeffA: 0.95, CrownExpB: 0.64},
	"pine":   {Name: "pine", AvgHeightM: 30, AvgDBHCm: 55, MinDBHCm: 10, MaxDBHCm: 150, CrownCoeffA: 0.52, CrownExpB: 0.60},
	"birch":  {Name: "birch", AvgHeightM: 18, AvgDBHCm: 35, MinDBHCm: 8, MaxDBHCm: 90, CrownCoeffA: 0.71, CrownExpB: 0.63},
	"maple":  {Name: "maple", AvgHeightM: 20, AvgDBHCm: 60, MinDBHCm: 12, MaxDBHCm: 160, CrownCoeffA: 0.88, CrownExpB: 0.61},
	"spruce": {Name: "spruce", AvgHeightM: 35, AvgDBHCm: 60, MinDBHCm: 10, MaxDBHCm: 150, CrownCoeffA: 0.48, CrownExpB: 0.58},
	"beech":  {Name: "beech", AvgHeightM: 25, AvgDBHCm: 70, MinDBHCm: 15, MaxDBHCm: 200, CrownCoeffA: 0.90, CrownExpB: 0.62},
	"willow": {Name: "willow", AvgHeightM: 15, AvgDBHCm: 70, MinDBHCm: 15, MaxDBHCm: 200, CrownCoeffA: 1.05, CrownExpB: 0.60},
}

// Lookup returns the descriptor for a species name, or Generic when the
// name is empty or unknown. Matching is case-insensitive on the first word
// ("Oak", "oak tree" and "OAK" all resolve to oak).
func Lookup(name string) Descriptor {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Generic
	}
	if d, ok := table[name]; ok {
		return d
	}
	if first, _, found := strings.Cut(name, " "); found {
		if d, ok := table[first]; ok {
			return d
		}
	}
	return Generic
}

// Known reports whether a species name resolves to a real table entry.
func Known(name string) bool {
	return Lookup(name).Name != Generic.Name
}

// Names lists the known species names, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CrownDiameterM returns the expected crown diameter (m) for a DBH (cm).
func (d Descriptor) CrownDiameterM(dbhCm float64) float64 {
	if dbhCm <= 0 {
		return 0
	}
	return d.CrownCoeffA * math.Pow(dbhCm, d.CrownExpB)
}

// DBHFromCrownM inverts the crown power law: the DBH (cm) whose expected
// crown diameter matches the given width (m).
func (d Descriptor) DBHFromCrownM(crownM float64) float64 {
	if crownM <= 0 || d.CrownCoeffA <= 0 || d.CrownExpB == 0 {
		return 0
	}
	return math.Pow(crownM/d.CrownCoeffA, 1/d.CrownExpB)
}

// SoftClamp nudges a diameter toward the species' plausible DBH range:
// values outside [MinDBHCm, MaxDBHCm] are pulled halfway back to the
// nearest bound rather than clipped, since the range itself is a rough
// calibration.
func (d Descriptor) SoftClamp(dbhCm float64) float64 {
	if dbhCm < d.MinDBHCm {
		return (dbhCm + d.MinDBHCm) / 2
	}
	if dbhCm > d.MaxDBHCm {
		return (dbhCm + d.MaxDBHCm) / 2
	}
	return dbhCm
}
