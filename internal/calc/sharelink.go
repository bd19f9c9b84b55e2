package calc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ShareURL builds the permalink that reproduces a calculation on the site:
// {siteURL}/calculator/{slug}/?{query}. Nested objects are flattened to
// dotted keys and arrays to repeated values, so the query stays parseable by
// the site's form code.
func ShareURL(siteURL, slug string, p Params) string {
	base := strings.TrimRight(siteURL, "/")
	q := url.Values{}
	flattenInto(q, "", p)
	encoded := q.Encode()
	if encoded == "" {
		return fmt.Sprintf("%s/calculator/%s/", base, slug)
	}
	return fmt.Sprintf("%s/calculator/%s/?%s", base, slug, encoded)
}

func flattenInto(q url.Values, prefix string, v any) {
	switch val := v.(type) {
	case Params:
		flattenInto(q, prefix, map[string]any(val))
	case map[string]any:
		for key, inner := range val {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flattenInto(q, name, inner)
		}
	case []any:
		for _, item := range val {
			flattenInto(q, prefix, item)
		}
	case string:
		q.Add(prefix, val)
	case bool:
		q.Add(prefix, strconv.FormatBool(val))
	case float64:
		q.Add(prefix, strconv.FormatFloat(val, 'f', -1, 64))
	case int:
		q.Add(prefix, strconv.Itoa(val))
	case nil:
	default:
		q.Add(prefix, fmt.Sprint(val))
	}
}
