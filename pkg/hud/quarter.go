package hud

import "strings"

//quarterVariants maps each canonical label to the OCR mangles observed for it
var quarterVariants = []struct {
	label    string
	variants []string
}{
	{"1st", []string{"1st", "1s", "ist", "lst", "1t"}},
	{"2nd", []string{"2nd", "2n", "2nc", "and", "znd"}},
	{"3rd", []string{"3rd", "3r", "3re", "3ra"}},
	{"4th", []string{"4th", "4t", "4tr", "4ti"}},
	{"OT", []string{"ot", "oot"}},
}

//NormalizeQuarter fuzzy-matches raw OCR text against the known quarter label
//variants. Unmatched text yields the empty string: guessing a default quarter
//here would fire false quarter_change events downstream.
func NormalizeQuarter(raw string) string {
	var clean strings.Builder
	for _, c := range strings.ToLower(raw) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			clean.WriteRune(c)
		}
	}
	text := clean.String()
	if text == "" {
		return ""
	}

	for _, q := range quarterVariants {
		for _, v := range q.variants {
			if text == v {
				return q.label
			}
		}
	}

	//last resort: a leading digit plus a disambiguating letter
	switch {
	case strings.Contains(text, "1") && (strings.Contains(text, "s") || strings.Contains(text, "t")):
		return "1st"
	case strings.Contains(text, "2") && strings.Contains(text, "n"):
		return "2nd"
	case strings.Contains(text, "3") && strings.Contains(text, "r"):
		return "3rd"
	case strings.Contains(text, "4") && strings.Contains(text, "t"):
		return "4th"
	}

	return ""
}
