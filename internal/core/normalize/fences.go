package normalize

import "strings"

// Unfence returns the body of the first ``` fenced block in s, dropping a language tag line
// text without a complete fence is returned trimmed; a lone pair of inline backticks is also removed
func Unfence(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "```")
	if open >= 0 {
		body := s[open+3:]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
			if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLangTag(body[:nl]) {
				body = body[nl+1:]
			}
			return strings.TrimSpace(body)
		}
	}
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' && strings.Count(s, "`") == 2 {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func isLangTag(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	for _, r := range line {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	// a bare keyword on the first line is SQL, not a tag
	return !strings.EqualFold(line, "select") && !strings.EqualFold(line, "with")
}
