package host

import (
	"fmt"
	"strings"
)

// SafeFormat substitutes {placeholder} fields in template with params.
// Unknown placeholders render as an empty string and an unterminated brace is
// kept literally, so a bad template never fails.
func SafeFormat(template string, params map[string]any) string {
	var b strings.Builder
	b.Grow(len(template))

	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			break
		}
		end += open

		b.WriteString(template[:open])
		key := strings.TrimSpace(template[open+1 : end])
		if v, ok := params[key]; ok && v != nil {
			fmt.Fprint(&b, v)
		}
		template = template[end+1:]
	}

	return b.String()
}
