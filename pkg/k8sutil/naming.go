/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package k8sutil holds helpers for naming Kubernetes objects after user input.
package k8sutil

import "strings"

// MaxLabelLength is the DNS-1123 label limit, which also bounds label values.
const MaxLabelLength = 63

// SanitizeName turns s into a DNS-1123 label of at most maxLen characters.
// Upper case is folded, any other invalid character becomes a hyphen and
// runs of hyphens collapse into one. The result may be empty.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}

	return strings.Trim(ShortenName(strings.TrimRight(b.String(), "-"), maxLen), "-")
}

// ShortenName shortens s to fit within maxLen.
// Vowels are dropped from each hyphen-separated segment first, keeping the
// segment's leading character. If that's not enough, it truncates the string.
func ShortenName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	parts := strings.Split(s, "-")
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('-')
		}
		if len(part) == 0 {
			continue
		}

		b.WriteByte(part[0])
		for j := 1; j < len(part); j++ {
			c := part[j]
			if !isVowel(c) {
				b.WriteByte(c)
			}
		}
	}

	res := b.String()
	if len(res) <= maxLen {
		return res
	}

	return res[:maxLen]
}

func isVowel(c byte) bool {
	return c == 'a' || c == 'e' || c == 'i' || c == 'o' || c == 'u'
}
