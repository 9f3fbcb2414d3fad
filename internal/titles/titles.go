// Package titles holds the canonical title and chapter normalization rules.
// Every store access and every inbound path parameter goes through these, so
// "solo-leveling", "Solo Leveling" and "solo  leveling" all address the same
// record.
package titles

import "strings"

// Normalize maps hyphens to spaces, collapses whitespace runs and trims.
// Case is preserved; the store compares normalized titles case-insensitively.
func Normalize(title string) string {
	replaced := strings.ReplaceAll(title, "-", " ")
	return strings.Join(strings.Fields(replaced), " ")
}

// Key returns the store lookup key for a title: normalized and lowercased.
func Key(title string) string {
	return strings.ToLower(Normalize(title))
}

// Slugify builds a URL slug: lowercase, whitespace runs collapsed to single
// hyphens. Punctuation is preserved, matching the source site's slugs.
func Slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	return strings.Join(strings.Fields(lowered), "-")
}

// ChapterLabel canonicalizes a chapter path parameter into the stored
// chapter label. "12" and "chapter-12" both become "Chapter 12".
func ChapterLabel(raw string) string {
	cleaned := Normalize(raw)
	if cleaned == "" {
		return ""
	}
	lowered := strings.ToLower(cleaned)
	if strings.HasPrefix(lowered, "chapter") {
		rest := strings.TrimSpace(cleaned[len("chapter"):])
		if rest == "" {
			return "Chapter"
		}
		return "Chapter " + rest
	}
	return "Chapter " + cleaned
}
