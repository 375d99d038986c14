package browser

import "strings"

// privilegedSchemes are surfaces Chromium refuses to capture.
var privilegedSchemes = []string{
	"chrome:",
	"chrome-extension:",
	"chrome-untrusted:",
	"devtools:",
	"edge:",
	"about:",
	"view-source:",
}

// capturable reports whether a page at address can be screenshotted.
func capturable(address string) bool {
	a := strings.ToLower(strings.TrimSpace(address))
	if a == "" {
		return false
	}
	for _, scheme := range privilegedSchemes {
		if strings.HasPrefix(a, scheme) {
			return false
		}
	}
	return true
}
