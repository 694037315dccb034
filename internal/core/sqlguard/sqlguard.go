// Package sqlguard vets model-written SQL before it reaches the warehouse.
// Only a single read-only SELECT passes; everything else is a validation error
package sqlguard

import (
	"regexp"
	"strings"

	perr "opsroute/internal/platform/errors"
)

const op = "sqlguard.Validate"

var (
	literalRe  = regexp.MustCompile(`'(?:[^']|'')*'`)
	selectRe   = regexp.MustCompile(`(?is)^\(?\s*select\b`)
	fromRe     = regexp.MustCompile(`(?i)\bfrom\b`)
	// statement verbs only count where a statement can begin, so a column named lock or set is fine
	verbRe     = regexp.MustCompile(`(?i)(?:^|[;(])\s*(drop|truncate|delete|insert|update|upsert|merge|alter|create|rename|grant|revoke|copy|execute|exec|call|vacuum|analyze|reindex|cluster|comment|lock|listen|notify|set|reset|do)\s+\w`)
	intoRe     = regexp.MustCompile(`(?i)\binto\b`)
	lockingRe  = regexp.MustCompile(`(?i)\bfor\s+(?:no\s+key\s+update|update|key\s+share|share)\b`)
	functionRe = regexp.MustCompile(`(?i)\b(pg_sleep|pg_read_file|pg_read_binary_file|pg_ls_dir|pg_terminate_backend|pg_cancel_backend|lo_import|lo_export|dblink\w*|set_config)\s*\(`)
	tautoRe    = regexp.MustCompile(`(?i)\bor\s+('[^']*'|\d+(?:\.\d+)?|[a-z_][a-z0-9_.]*)\s*=\s*('[^']*'|\d+(?:\.\d+)?|[a-z_][a-z0-9_.]*)`)
	orTrueRe   = regexp.MustCompile(`(?i)\bor\s+(true|not\s+false)\b`)
)

// Validate returns the statement without a trailing semicolon, or a validation error naming the first problem
func Validate(sql string) (string, error) {
	s := strings.TrimSpace(sql)
	if s == "" {
		return "", reject("empty statement")
	}
	if strings.Contains(s, "```") {
		return "", reject("markdown fence in statement")
	}
	if strings.Count(s, "'")%2 != 0 {
		return "", reject("unterminated string literal")
	}

	// keyword checks run with literals blanked so 'drop zone' stays a value
	bare := literalRe.ReplaceAllString(s, "''")
	if strings.Contains(bare, "--") || strings.Contains(bare, "/*") || strings.Contains(bare, "#") {
		return "", reject("comments are not allowed")
	}
	bare = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(bare), ";"))
	if strings.Contains(bare, ";") {
		return "", reject("multiple statements")
	}
	if !selectRe.MatchString(bare) {
		return "", reject("statement must start with SELECT")
	}
	if !fromRe.MatchString(bare) {
		return "", reject("statement has no FROM")
	}
	if m := verbRe.FindStringSubmatch(bare); m != nil {
		return "", reject("forbidden keyword " + strings.ToUpper(m[1]))
	}
	if intoRe.MatchString(bare) {
		return "", reject("forbidden keyword INTO")
	}
	if lockingRe.MatchString(bare) {
		return "", reject("row locking clause")
	}
	if m := functionRe.FindStringSubmatch(bare); m != nil {
		return "", reject("forbidden function " + strings.ToLower(m[1]))
	}
	if tautology(s) {
		return "", reject("tautological predicate")
	}
	return strings.TrimSpace(strings.TrimRight(s, "; \t\n")), nil
}

// tautology spots OR x = x and OR TRUE
func tautology(s string) bool {
	if orTrueRe.MatchString(s) {
		return true
	}
	for _, m := range tautoRe.FindAllStringSubmatch(s, -1) {
		if strings.EqualFold(strings.Trim(m[1], "'"), strings.Trim(m[2], "'")) {
			return true
		}
	}
	return false
}

func reject(msg string) error {
	return perr.WithField(perr.WithOp(perr.Validationf("sql: %s", msg), op), "sql")
}
