package utils

import (
	"strings"

	"devevents/src-server/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strips spaces, uppercase first letter, remove trailing period
func CleanupString(s string) string {
	s = strings.TrimSpace(s)
	s = cases.Title(language.English).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}

// Human label of a mode, e.g. "hybrid" -> "Hybrid".
func ModeLabel(mode model.EventMode) string {
	return CleanupString(string(mode))
}
