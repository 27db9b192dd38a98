package config

import "regexp"

var placeholderPattern = regexp.MustCompile(`\$\{([^{}]+)\}`)

// ExpandPlaceholders replaces ${NAME} with the value of NAME. Unknown names
// are left untouched so the failure surfaces at request time with the
// original text.
func ExpandPlaceholders(s string, lookup LookupFunc) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := lookup(name); ok {
			return v
		}
		return m
	})
}
