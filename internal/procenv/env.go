package procenv

import "strings"

// blockedVars are removed from the environment unconditionally, even when a
// caller override tries to introduce them. PYTHONPATH is blocked because the
// host's interpreter search path must never leak into the worker.
var blockedVars = map[string]struct{}{
	"PYTHONPATH": {},
}

// Sanitize merges a base environment snapshot (in "KEY=VALUE" form, as
// returned by os.Environ) with caller overrides and returns a new slice
// suitable for exec.Cmd.Env. Overrides win on key collision. Blocked
// variables are dropped regardless of origin. Neither input is mutated.
//
// An override with an empty value still sets the variable to the empty
// string; use the base environment's absence of a key to unset.
func Sanitize(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]struct{}, len(base)+len(overrides))

	// Overrides take precedence, so record their keys first and emit them
	// up front. Iteration order over the map is not significant for
	// exec.Cmd.Env semantics.
	for key, value := range overrides {
		if _, blocked := blockedVars[key]; blocked {
			continue
		}
		seen[key] = struct{}{}
		env = append(env, key+"="+value)
	}

	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			// Malformed entries (no '=') are passed through untouched;
			// the kernel tolerates them and dropping them silently would
			// hide caller bugs.
			env = append(env, kv)
			continue
		}
		if _, blocked := blockedVars[key]; blocked {
			continue
		}
		if _, overridden := seen[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	return env
}
