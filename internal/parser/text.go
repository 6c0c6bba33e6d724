package parser

import "strings"

func cleanHumanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
