package detect

import (
	"os"
	"regexp"
	"strings"

	"github.com/nexsoft/nexup/internal/logging"
)

var (
	defaultURLPattern  = regexp.MustCompile(`(?m)^\s*DEFAULT_DOWNLOAD_URL\s*=\s*['"]([^'"]+)['"]`)
	downloadURLPattern = regexp.MustCompile(`(?m)^\s*DOWNLOAD_URL\s*=\s*['"]([^'"]+)['"]`)
	anyURLPattern      = regexp.MustCompile(`https?://\S+`)
)

// DownloadURL scans the updater script's source text for an embedded default
// download URL. It prefers an explicit DEFAULT_DOWNLOAD_URL assignment, then
// a DOWNLOAD_URL assignment, then the first http(s) URL anywhere in the
// file. A missing or unreadable script is not an error.
func DownloadURL(scriptPath string) (string, bool) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		logging.LogDetection("script", "DOWNLOAD_URL", false)
		return "", false
	}
	text := string(data)

	for _, pattern := range []*regexp.Regexp{defaultURLPattern, downloadURLPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			url := strings.TrimSpace(m[1])
			if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
				logging.LogDetection("script", "DOWNLOAD_URL", true)
				return url, true
			}
		}
	}

	if m := anyURLPattern.FindString(text); m != "" {
		logging.LogDetection("script", "DOWNLOAD_URL", true)
		return strings.TrimRight(strings.TrimSpace(m), ")"), true
	}

	logging.LogDetection("script", "DOWNLOAD_URL", false)
	return "", false
}
