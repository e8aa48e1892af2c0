package devserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// filters reads the PostgREST operators the client sends.
type filters struct {
	v url.Values
}

func parseFilters(v url.Values) filters {
	return filters{v: v}
}

// eq returns the operand of col=eq.<value>.
func (f filters) eq(col string) (string, bool) {
	raw := f.v.Get(col)
	if !strings.HasPrefix(raw, "eq.") {
		return "", false
	}
	return strings.TrimPrefix(raw, "eq."), true
}

// isUnreadOnly reports whether the query carries is_read=eq.false.
func (f filters) isUnreadOnly() bool {
	v, ok := f.eq("is_read")
	return ok && v == "false"
}

// in returns the members of col=in.(a,"b,c").
func (f filters) in(col string) ([]string, bool, error) {
	raw := f.v.Get(col)
	if !strings.HasPrefix(raw, "in.") {
		return nil, false, nil
	}
	list := strings.TrimPrefix(raw, "in.")
	if !strings.HasPrefix(list, "(") || !strings.HasSuffix(list, ")") {
		return nil, true, fmt.Errorf("malformed list for %s: %q", col, raw)
	}
	vals, err := splitList(list[1 : len(list)-1])
	if err != nil {
		return nil, true, fmt.Errorf("malformed list for %s: %w", col, err)
	}
	return vals, true, nil
}

func (f filters) limit() (int, error) {
	raw := f.v.Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return n, nil
}

// embeds reports whether the select list embeds the named table.
func (f filters) embeds(table string) bool {
	return strings.Contains(f.v.Get("select"), table+"(")
}

// splitList splits a comma-separated list where members may be double
// quoted with backslash escapes.
func splitList(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quoted && ch == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	return append(out, cur.String()), nil
}

func contentRange(n int64) string {
	return "*/" + strconv.FormatInt(n, 10)
}
