// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

// formatString implements format()'s template grammar (spec §4.F):
// `{N}` substitutes the Nth trailing argument (lazily stringified only
// when actually referenced), `{{` and `}}` are literal brace escapes, and
// a colon-prefixed format-specifier tail (`{0:x}`) always raises since
// this language defines no specifier vocabulary — the colon form exists
// in the grammar only to be rejected with a clear diagnostic.
func formatString(tmpl string, args []ctxval.Value) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				sb.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("format: unterminated '{' at position %d", i+1)
			}
			inner := tmpl[i+1 : i+end]
			i += end + 1

			spec := inner
			var formatSpec string
			if colon := strings.IndexByte(inner, ':'); colon >= 0 {
				spec = inner[:colon]
				formatSpec = inner[colon+1:]
			}
			idx, err := strconv.Atoi(strings.TrimSpace(spec))
			if err != nil || idx < 0 {
				return "", fmt.Errorf("format: invalid placeholder index '%s'", spec)
			}
			if formatSpec != "" {
				return "", fmt.Errorf("format: format specifiers are not supported ('%s')", formatSpec)
			}
			if idx >= len(args) {
				return "", fmt.Errorf("format: placeholder index {%d} has no matching argument", idx)
			}
			sb.WriteString(ctxval.ConvertToString(args[idx]))

		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				sb.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("format: unmatched '}' at position %d", i+1)

		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}
