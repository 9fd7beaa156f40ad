package constants

import "strings"

// ExpenseCategory buckets a bill amount for coverage purposes.
type ExpenseCategory string

const (
	CategoryMedicine     ExpenseCategory = "Medicine"
	CategoryTest         ExpenseCategory = "Test"
	CategoryConsultation ExpenseCategory = "Consultation"
)

var allCategories = []ExpenseCategory{
	CategoryMedicine,
	CategoryTest,
	CategoryConsultation,
}

func CategoriesAsStrings() []string {
	result := make([]string, len(allCategories))
	for i, c := range allCategories {
		result[i] = string(c)
	}
	return result
}

// CanonicalizeCategory maps free-form category labels (as they appear on
// bills) onto the three coverage buckets.
func CanonicalizeCategory(input string) (ExpenseCategory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return CategoryConsultation, false
	}

	synonyms := map[string]ExpenseCategory{
		"medicine":     CategoryMedicine,
		"medicines":    CategoryMedicine,
		"drug":         CategoryMedicine,
		"drugs":        CategoryMedicine,
		"pharmacy":     CategoryMedicine,
		"test":         CategoryTest,
		"tests":        CategoryTest,
		"lab":          CategoryTest,
		"laboratory":   CategoryTest,
		"scan":         CategoryTest,
		"diagnostics":  CategoryTest,
		"consultation": CategoryConsultation,
		"consult":      CategoryConsultation,
		"visit":        CategoryConsultation,
		"checkup":      CategoryConsultation,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}
	return CategoryConsultation, false
}
