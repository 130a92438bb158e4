// Package status maps the truncated status codes the bulletin API emits to
// their full names.
package status

import "strings"

type mapping struct {
	short string
	full  string
}

// Order matters: prefix lookups return the first match, so "ALTER" wins over
// "ALTERA" for inputs both keys relate to.
var table = []mapping{
	{"PRORROG", "PRORROGADA"},
	{"PRORROGA", "PRORROGADA"},
	{"ALTER", "ALTERADA"},
	{"ALTERA", "ALTERADA"},
	{"ADIAD", "ADIADA"},
	{"SUSP", "SUSPENSA"},
	{"SUSPEN", "SUSPENSA"},
	{"CANCEL", "CANCELADA"},
	{"REVOG", "REVOGADA"},
	{"ANUL", "ANULADA"},
	{"DESERT", "DESERTA"},
	{"FRACASS", "FRACASSADA"},
	{"REABERT", "REABERTA"},
	{"RETIF", "RETIFICADA"},
	{"HOMOLOG", "HOMOLOGADA"},
	{"ADJUDIC", "ADJUDICADA"},
	{"ENCERR", "ENCERRADA"},
	{"IMPUGN", "IMPUGNADA"},
}

// Canonicalize returns the full status name for raw. Unknown values come
// back trimmed and upper-cased.
func Canonicalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for _, m := range table {
		if m.short == s {
			return m.full
		}
	}

	// The upstream truncates at arbitrary lengths, so accept a prefix
	// relationship in either direction.
	for _, m := range table {
		if strings.HasPrefix(s, m.short) || strings.HasPrefix(m.short, s) {
			return m.full
		}
	}

	return s
}
