package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FilterResultFields reduces a result struct to the requested JSON fields.
// fieldsStr is a comma-separated list of field names; empty means no
// filtering.
func FilterResultFields(result interface{}, fieldsStr string) map[string]interface{} {
	if fieldsStr == "" {
		// No filtering, convert to map and return all fields
		return structToMap(result)
	}

	requestedFields := strings.Split(fieldsStr, ",")
	includeFields := make(map[string]bool)
	for _, field := range requestedFields {
		includeFields[strings.TrimSpace(field)] = true
	}

	// Convert struct to map
	fullMap := structToMap(result)

	// Filter map
	filtered := make(map[string]interface{})
	for key, value := range fullMap {
		if includeFields[key] {
			filtered[key] = value
		}
	}

	return filtered
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// markdownLinkPattern extracts the target from a pasted markdown link:
// "[shared doc](https://drive.google.com/...)" -> the URL.
var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// CleanRef performs basic cleanup on pasted file paths and Drive links to
// handle common copy-paste issues. Removes whitespace, trailing
// punctuation, and markdown artifacts.
func CleanRef(raw string) string {
	// Trim all whitespace from edges
	cleaned := strings.TrimSpace(raw)

	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	// Remove common trailing punctuation from copy-paste errors
	// Example: "https://drive.google.com/open?id=abc," -> "...?id=abc"
	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	// Remove leading markdown/formatting artifacts
	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	// Trim again after removing punctuation (in case there was whitespace before punctuation)
	return strings.TrimSpace(cleaned)
}

// SplitRefs splits a comma-separated flag value into cleaned, non-empty
// entries, preserving order.
func SplitRefs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		if cleaned := CleanRef(p); cleaned != "" {
			refs = append(refs, cleaned)
		}
	}
	return refs
}
