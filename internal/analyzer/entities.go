package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	brandPattern   = regexp.MustCompile(`\b(iphone|samsung|apple|google|microsoft|tesla|nike|adidas)\b`)
	productPattern = regexp.MustCompile(`\b(macbook|laptop|smartphone|car|shoes|camera)\b`)
	yearPattern    = regexp.MustCompile(`\b(\d{4})\b`)

	// Salient-length words that carry no entity value on their own.
	entityStopWords = map[string]bool{
		"best":      true,
		"good":      true,
		"cheap":     true,
		"expensive": true,
	}
)

// ExtractEntities pulls brand names, product classes, 4-digit years and any
// remaining salient tokens out of a query. Input is normalized first, so
// matching and dedup are case-insensitive. Results keep first-seen order;
// entity-based generation depends on that order being stable.
func ExtractEntities(query string) []string {
	query = Normalize(query)
	if query == "" {
		return nil
	}

	var entities []string
	seen := make(map[string]bool)
	add := func(entity string) {
		if entity == "" || seen[entity] {
			return
		}
		seen[entity] = true
		entities = append(entities, entity)
	}

	for _, pattern := range []*regexp.Regexp{brandPattern, productPattern, yearPattern} {
		for _, match := range pattern.FindAllString(query, -1) {
			add(match)
		}
	}

	// Every remaining token of salient length is a candidate entity.
	for _, word := range strings.Fields(query) {
		if utf8.RuneCountInString(word) > 3 && !entityStopWords[word] {
			add(word)
		}
	}

	return entities
}
