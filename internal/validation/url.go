// Package validation checks URLs before they leave the process: the shell
// URL handed to the platform browser opener and theme stylesheet URLs that
// are fetched on behalf of the preview frame.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// shellChars could break out of the argument passed to xdg-open, open or
// rundll32.
var shellChars = []string{";", "&", "|", "`", "$", "(", ")", "<", ">", "\"", "'", "\\", "\n", "\r", " ", "\t"}

// ValidateBrowserURL validates the URL handed to the platform browser
// opener. Only http(s) URLs with a host and without shell metacharacters
// pass; the query string is included in the check.
func ValidateBrowserURL(rawURL string) error {
	if _, err := parseHTTP(rawURL); err != nil {
		return err
	}

	for _, char := range shellChars {
		if strings.Contains(rawURL, char) {
			return fmt.Errorf("URL contains dangerous character: %q", char)
		}
	}
	return nil
}

// ValidateStylesheetURL validates a remote theme source. Credentials in the
// URL are rejected since the URL is listed by the themes command.
func ValidateStylesheetURL(rawURL string) error {
	parsed, err := parseHTTP(rawURL)
	if err != nil {
		return err
	}
	if parsed.User != nil {
		return fmt.Errorf("URL must not carry credentials")
	}
	if strings.ContainsAny(rawURL, " \t\n\r") {
		return fmt.Errorf("URL contains whitespace")
	}
	return nil
}

func parseHTTP(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("URL must have a valid hostname")
	}
	return parsed, nil
}
