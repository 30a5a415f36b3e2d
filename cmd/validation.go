package cmd

import (
	"fmt"
	"strings"
)

// validatePatternArg rejects pattern arguments that cannot name a component:
// shell metacharacters, traversal and absolute paths.
func validatePatternArg(arg string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "[", "]", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	for _, segment := range strings.Split(arg, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal attempt detected")
		}
	}

	if strings.HasPrefix(arg, "/") {
		return fmt.Errorf("pattern must not start with '/': %s", arg)
	}

	return nil
}

func validatePatternArgs(args []string) error {
	for _, arg := range args {
		if err := validatePatternArg(arg); err != nil {
			return fmt.Errorf("invalid pattern '%s': %w", arg, err)
		}
	}
	return nil
}
