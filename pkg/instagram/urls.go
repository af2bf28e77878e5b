package instagram

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Encoding selects how AppendQuery encodes parameter values.
type Encoding int

const (
	// EncodingLegacy follows RFC 1738: spaces become "+".
	EncodingLegacy Encoding = iota
	// EncodingRFC3986 percent-encodes spaces as "%20".
	EncodingRFC3986
)

const placeholder = "%s"

// ResolveURL fills template's %s placeholders with values, in order, and
// returns {base}/{version}/{template}{?|&}access_token={token}.
// Values are path-escaped before the template's "?" and query-escaped after
// it. A placeholder count that does not match len(values) panics: templates
// are fixed in this package.
func ResolveURL(base, version, template, token string, values ...string) string {
	parts := strings.Split(template, placeholder)
	if len(parts)-1 != len(values) {
		panic(fmt.Sprintf("instagram: template %q has %d placeholders, got %d values",
			template, len(parts)-1, len(values)))
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteByte('/')
	b.WriteString(strings.Trim(version, "/"))
	b.WriteByte('/')

	inQuery := false
	for i, part := range parts {
		b.WriteString(part)
		if strings.Contains(part, "?") {
			inQuery = true
		}
		if i == len(values) {
			break
		}
		if inQuery {
			b.WriteString(url.QueryEscape(values[i]))
		} else {
			b.WriteString(url.PathEscape(values[i]))
		}
	}

	sep := "?"
	if strings.Contains(template, "?") {
		sep = "&"
	}
	b.WriteString(sep)
	b.WriteString("access_token=")
	b.WriteString(url.QueryEscape(token))
	return b.String()
}

// AppendQuery appends params to rawURL after sep, keys in sorted order.
// Empty params return rawURL unchanged.
func AppendQuery(rawURL, sep string, params map[string]string, enc Encoding) string {
	if len(params) == 0 {
		return rawURL
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, encode(k, enc)+"="+encode(params[k], enc))
	}
	return rawURL + sep + strings.Join(pairs, "&")
}

func encode(s string, enc Encoding) string {
	escaped := url.QueryEscape(s)
	if enc == EncodingRFC3986 {
		return strings.ReplaceAll(escaped, "+", "%20")
	}
	return escaped
}
