package sbom

import "strings"

const (
	NoAssertion = "NOASSERTION"
	None        = "NONE"
)

// LicenseDeclared returns the node's declared license set as one SPDX
// expression.
func (n *Node) LicenseDeclared() string {
	return JoinLicenses(n.Licenses)
}

// JoinLicenses conjoins license expressions with AND. Members that are
// themselves compound get parentheses so the result splits back into the
// same members. A lone member is only wrapped when SplitLicenses would
// otherwise break it apart.
func JoinLicenses(licenses []string) string {
	parts := make([]string, 0, len(licenses))
	for _, l := range licenses {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		wrap := strings.ContainsAny(l, " \t") && !wrapped(l)
		if len(licenses) == 1 {
			fields := strings.Fields(l)
			wrap = wrap && topLevel(fields, "AND") && !topLevel(fields, "OR")
		}
		if wrap {
			l = "(" + l + ")"
		}
		parts = append(parts, l)
	}
	return strings.Join(parts, " AND ")
}

// SplitLicenses is the inverse of JoinLicenses: it splits on top-level AND
// operators and drops one redundant pair of outer parentheses from each
// member. AND binds tighter than OR, so an expression with a top-level OR is
// kept whole as a single member. NOASSERTION and NONE yield nil.
func SplitLicenses(expr string) []string {
	expr = strings.TrimSpace(expr)
	if IsUnset(expr) {
		return nil
	}
	fields := strings.Fields(expr)
	if topLevel(fields, "OR") {
		return appendMember(nil, fields)
	}
	var (
		out   []string
		depth int
		start int
	)
	for i, f := range fields {
		depth += strings.Count(f, "(") - strings.Count(f, ")")
		if depth == 0 && f == "AND" {
			out = appendMember(out, fields[start:i])
			start = i + 1
		}
	}
	return appendMember(out, fields[start:])
}

func appendMember(out []string, fields []string) []string {
	m := strings.Join(fields, " ")
	if m == "" {
		return out
	}
	if wrapped(m) {
		m = strings.TrimSpace(m[1 : len(m)-1])
	}
	return append(out, m)
}

// topLevel reports whether the operator op occurs in fields outside any
// parentheses.
func topLevel(fields []string, op string) bool {
	depth := 0
	for _, f := range fields {
		depth += strings.Count(f, "(") - strings.Count(f, ")")
		if depth == 0 && f == op {
			return true
		}
	}
	return false
}

// wrapped reports whether s is entirely enclosed by one matching pair of
// parentheses.
func wrapped(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// IsUnset reports whether a license or text field carries no information.
func IsUnset(s string) bool {
	return s == "" || s == NoAssertion || s == None
}
