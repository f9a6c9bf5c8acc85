package main

import "strings"

// Flags consumed by the launcher itself and stripped from the argv handed
// to the children. Everything else is forwarded verbatim.
var launcherOnlyFlags = map[string]bool{
	"--config": true,
}

// passthroughArgs returns the received argument vector minus launcher-only
// flags. Children replace argv[0] with their own executable and re-parse
// the rest themselves.
func passthroughArgs(args []string) []string {
	out := make([]string, 0, len(args))
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if launcherOnlyFlags[arg] {
			skipNext = true
			continue
		}
		if name, _, ok := strings.Cut(arg, "="); ok && launcherOnlyFlags[name] {
			continue
		}
		out = append(out, arg)
	}
	return out
}
