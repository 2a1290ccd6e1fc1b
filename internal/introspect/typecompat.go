package introspect

import "strings"

// Families of types that are join-compatible with each other even when the
// dialects spell them differently.
var (
	integerTypes = map[string]bool{
		"int":       true,
		"integer":   true,
		"bigint":    true,
		"smallint":  true,
		"tinyint":   true,
		"serial":    true,
		"bigserial": true,
	}

	stringTypes = map[string]bool{
		"varchar": true,
		"char":    true,
		"text":    true,
		"string":  true,
	}
)

// normalizeType lowercases a dialect-native type name and strips any
// parenthesized size/precision suffix: "VARCHAR(255)" -> "varchar".
// Idempotent: normalizing twice gives the same result.
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// TypesCompatible reports whether two column types are join-compatible for
// relationship-inference purposes. It is pure, total, and symmetric: the
// decision reduces to equality and family membership over normalized forms.
func TypesCompatible(a, b string) bool {
	na, nb := normalizeType(a), normalizeType(b)

	if na == nb {
		return true
	}
	if integerTypes[na] && integerTypes[nb] {
		return true
	}
	if stringTypes[na] && stringTypes[nb] {
		return true
	}
	return false
}
