package tsquery

import (
	"strconv"
	"strings"
)

// ServerQuery escape table. Values in commands and responses never contain
// raw spaces, pipes or control characters; they travel escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`/`, `\/`,
	` `, `\s`,
	`|`, `\p`,
	"\a", `\a`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\v", `\v`,
)

// Escape encodes a value for use inside a ServerQuery command.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape decodes a value received from the server. Unknown escape
// sequences are passed through with the backslash dropped, matching
// server behavior.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 's':
			b.WriteByte(' ')
		case 'p':
			b.WriteByte('|')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// parseMap splits one record of space-separated key=value pairs. Bare
// tokens (flags without a value) map to an empty string. Values are
// unescaped.
func parseMap(record string) map[string]string {
	fields := strings.Split(record, " ")
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		key, value, found := strings.Cut(f, "=")
		if !found {
			m[key] = ""
			continue
		}
		m[key] = Unescape(value)
	}
	return m
}

// parseRecords splits a data line into its pipe-separated records.
func parseRecords(line string) []map[string]string {
	parts := strings.Split(line, "|")
	records := make([]map[string]string, 0, len(parts))
	for _, p := range parts {
		records = append(records, parseMap(p))
	}
	return records
}

// parseErrorLine parses the "error id=N msg=..." terminator of every
// response. ok is false when the line is not an error terminator.
func parseErrorLine(line string) (id int, msg string, ok bool) {
	if !strings.HasPrefix(line, "error ") {
		return 0, "", false
	}
	m := parseMap(strings.TrimPrefix(line, "error "))
	rawID, hasID := m["id"]
	if !hasID {
		return 0, "", false
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return 0, "", false
	}
	msg = m["msg"]
	if extra := m["extra_msg"]; extra != "" {
		msg += ": " + extra
	}
	return id, msg, true
}

func mapUint(m map[string]string, key string) uint64 {
	v, err := strconv.ParseUint(m[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func mapInt(m map[string]string, key string) int {
	v, err := strconv.Atoi(m[key])
	if err != nil {
		return 0
	}
	return v
}

func mapBool(m map[string]string, key string) bool {
	return m[key] == "1"
}
