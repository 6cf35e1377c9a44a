package pkg

import "strings"

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// Remove returns slice without any occurrence of val
func Remove(slice []string, val string) []string {
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if v != val {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeTags trims, lowercases and de-duplicates tags, dropping empty ones
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SplitCSV splits a comma separated form value
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
