/*
Package flags contains custom CLI flag types for NEAR values.
*/
package flags

import (
	"fmt"
	"strings"
)

func eachName(longName string, fn func(string)) {
	parts := strings.Split(longName, ",")
	for _, name := range parts {
		name = strings.Trim(name, " ")
		fn(name)
	}
}

func getNameHelp(name string) string {
	if len(name) == 1 {
		return fmt.Sprintf("-%s value", name)
	}
	return fmt.Sprintf("--%s value", name)
}

func flagString(name, usage string) string {
	var names []string
	eachName(name, func(name string) {
		names = append(names, getNameHelp(name))
	})
	return strings.Join(names, ", ") + "\t" + usage
}
