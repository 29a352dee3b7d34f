package metadata

import "strings"

// Category groups metadata keys for display
type Category string

const (
	CategoryFile     Category = "File"
	CategoryCamera   Category = "Camera"
	CategoryExposure Category = "Exposure"
	CategoryGPS      Category = "GPS"
	CategoryOther    Category = "Other"
)

// Categories lists every category in display order
var Categories = []Category{CategoryFile, CategoryCamera, CategoryExposure, CategoryGPS, CategoryOther}

// categoryKeywords is checked in order; the first category with a keyword
// contained in the key wins. GPS precedes Exposure so that GPS date and time
// keys stay with the location. This is a display heuristic, not a taxonomy.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryFile, []string{"file", "path", "size", "modified"}},
	{CategoryCamera, []string{"make", "model", "lens", "software", "camera"}},
	{CategoryGPS, []string{"gps", "latitude", "longitude", "altitude"}},
	{CategoryExposure, []string{"iso", "exposure", "f-number", "focal length", "flash", "white balance", "date"}},
}

// normalizeKey folds case and drops separators so that "f_number",
// "FNumber" and "f-number" compare equal
func normalizeKey(s string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
}

// Classify returns the category of a single key
func Classify(key string) Category {
	k := normalizeKey(key)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(k, normalizeKey(kw)) {
				return group.category
			}
		}
	}
	return CategoryOther
}

// Categorize splits a display mapping into the five categories. Every
// category is present in the result, and every key lands in exactly one.
func Categorize(data map[string]interface{}) map[Category]map[string]interface{} {
	result := make(map[Category]map[string]interface{}, len(Categories))
	for _, c := range Categories {
		result[c] = make(map[string]interface{})
	}

	for key, value := range data {
		result[Classify(key)][key] = value
	}

	return result
}
