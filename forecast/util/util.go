// Package util holds small formatting helpers for the text dumps of fitted models.
package util

import "strings"

// IndentExpand returns indent repeated depth times.
func IndentExpand(indent string, depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(indent, depth)
}
