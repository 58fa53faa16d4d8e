package pipeline

import "treemeter/internal/distance"

// tips suggests concrete ways to improve a low-quality measurement. Only
// actionable advice: each tip maps to a condition visible in the result.
func tips(res *Result) []string {
	if res.Fusion == nil {
		return nil
	}
	var out []string

	methods := map[distance.Method]bool{}
	for _, h := range res.Fusion.Hypotheses {
		methods[h.Method] = true
	}

	if !methods[distance.MethodReference] {
		out = append(out, "place a known object (a person, a bottle) next to the trunk for a much more accurate scale")
	}
	if !methods[distance.MethodGroundPlane] {
		out = append(out, "include the base of the trunk in the frame so the ground line is visible")
	}
	if res.Fusion.CV > 0.30 {
		out = append(out, "retake the photo from 2-3 m away with the trunk centered; the estimates disagree")
	}
	if res.Fusion.Confidence < 40 {
		out = append(out, "shoot in daylight with the whole trunk visible and unobstructed")
	}
	if !res.Semantic && !methods[distance.MethodCrownAllometry] {
		out = append(out, "step back until some of the crown is in frame")
	}
	return out
}
