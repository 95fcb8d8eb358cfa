package models

import "fmt"

func invalidToken(kind, token, expected string) error {
	return fmt.Errorf("invalid %s %q (expected one of: %s)", kind, token, expected)
}
