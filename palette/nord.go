package palette

import (
	"fmt"
	"sort"
	"strings"
)

// Nord color groups, see https://www.nordtheme.com/docs/colors-and-palettes
var (
	Aurora     = MustStatic(0xBF616A, 0xD08770, 0xEBCB8B, 0xA3BE8C, 0xB48EAD)
	Frost      = MustStatic(0x8FBCBB, 0x88C0D0, 0x81A1C1, 0x5E81AC)
	PolarNight = MustStatic(0x2E3440, 0x3B4252, 0x434C5E, 0x4C566A)
	SnowStorm  = MustStatic(0xD8DEE9, 0xE5E9F0, 0xECEFF4)

	Nord = Concat(Aurora, Frost, PolarNight, SnowStorm)
)

var builtins = map[string]*Static{
	"nord":        Nord,
	"aurora":      Aurora,
	"frost":       Frost,
	"polar-night": PolarNight,
	"snow-storm":  SnowStorm,
}

// Builtin returns the named built-in palette. Names are case insensitive.
func Builtin(name string) (*Static, bool) {
	p, ok := builtins[strings.ToLower(name)]
	return p, ok
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinHelp() string {
	return fmt.Sprintf("one of %s", strings.Join(BuiltinNames(), ", "))
}
