package chunker

import "strings"

const utf8BOM = "﻿"

// normalize converts any mix of CRLF/CR/LF line endings to LF and strips
// a leading UTF-8 BOM, per spec.md §4.7(a) and §6's "Line endings" rule.
func normalize(text string) string {
	text = strings.TrimPrefix(text, utf8BOM)
	if !strings.ContainsAny(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}

// isBlank reports whether line contains only whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
