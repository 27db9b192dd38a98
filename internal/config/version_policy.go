package config

import "strings"

// CurrentConfigVersion is written by the stagefile package.
const CurrentConfigVersion = "1"

// configVersions lists every config layout this build reads, oldest first.
var configVersions = []struct {
	id       string
	sections string
}{
	{id: "1", sections: "textSafety, input, output, copies, ui, log, metrics"},
}

// IsSupportedConfigVersion reports whether v names a readable layout.
func IsSupportedConfigVersion(v string) bool {
	for _, cv := range configVersions {
		if cv.id == v {
			return true
		}
	}
	return false
}

// SupportedConfigVersionsCSV lists the readable layouts for error messages.
func SupportedConfigVersionsCSV() string {
	ids := make([]string, len(configVersions))
	for i, cv := range configVersions {
		ids[i] = cv.id
	}
	return strings.Join(ids, ", ")
}
