package htmldoc

import "strings"

type declaration struct {
	prop, val string
}

// parseStyle splits an inline style attribute into ordered declarations.
func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, val: strings.TrimSpace(val)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.val
	}
	return strings.Join(parts, "; ")
}

// withProperty returns style with prop set to val; an empty val removes it.
func withProperty(style, prop, val string) string {
	prop = strings.ToLower(prop)
	decls := parseStyle(style)
	out := decls[:0]
	found := false
	for _, d := range decls {
		if d.prop != prop {
			out = append(out, d)
			continue
		}
		if val != "" && !found {
			out = append(out, declaration{prop: prop, val: val})
			found = true
		}
	}
	if val != "" && !found {
		out = append(out, declaration{prop: prop, val: val})
	}
	return formatStyle(out)
}

func property(style, prop string) string {
	prop = strings.ToLower(prop)
	val := ""
	for _, d := range parseStyle(style) {
		if d.prop == prop {
			val = d.val
		}
	}
	return val
}
