// Package bpath implements path splitting and canonicalization for the
// directory layer (spec.md §4.4's path resolution algorithm). The teacher
// imports a package of this name from fd.Cwd_t.Canonicalpath but the
// retrieval pack's copy of it was pruned to an empty stub; this is a
// from-scratch implementation of the contract that call site establishes:
// collapse "." and ".." components and repeated slashes into a single
// absolute, slash-separated path.
package bpath

import "pintos/ustr"

// Split breaks p into its slash-separated components, dropping empty
// components produced by leading, trailing, or repeated slashes.
func Split(p ustr.Ustr) []ustr.Ustr {
	var parts []ustr.Ustr
	start := 0
	s := string(p)
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '/' {
			if i > start {
				parts = append(parts, ustr.Ustr(s[start:i]))
			}
			start = i + 1
		}
	}
	return parts
}

// Canonicalize resolves "." and ".." components of an absolute path p and
// returns a normalized absolute path with no trailing slash (except the
// root itself, returned as "/").
func Canonicalize(p ustr.Ustr) ustr.Ustr {
	parts := Split(p)
	var stack []ustr.Ustr
	for _, c := range parts {
		switch {
		case c.Isdot():
			continue
		case c.Isdotdot():
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, c)
		}
	}
	if len(stack) == 0 {
		return ustr.MkUstrRoot()
	}
	out := ustr.Ustr("")
	for _, c := range stack {
		out = append(out, '/')
		out = append(out, c...)
	}
	return out
}

// Join joins a base path with a possibly-relative path, then
// canonicalizes the result.
func Join(base, p ustr.Ustr) ustr.Ustr {
	if p.IsAbsolute() {
		return Canonicalize(p)
	}
	full := append(append(ustr.Ustr{}, base...), '/')
	full = append(full, p...)
	return Canonicalize(full)
}

// Dir returns all but the last component of a canonicalized path.
func Dir(p ustr.Ustr) ustr.Ustr {
	parts := Split(p)
	if len(parts) <= 1 {
		return ustr.MkUstrRoot()
	}
	return Canonicalize(joinParts(parts[:len(parts)-1]))
}

// Base returns the last component of a path, or "/" for the root.
func Base(p ustr.Ustr) ustr.Ustr {
	parts := Split(p)
	if len(parts) == 0 {
		return ustr.MkUstrRoot()
	}
	return parts[len(parts)-1]
}

func joinParts(parts []ustr.Ustr) ustr.Ustr {
	out := ustr.Ustr("")
	for _, c := range parts {
		out = append(out, '/')
		out = append(out, c...)
	}
	if len(out) == 0 {
		return ustr.MkUstrRoot()
	}
	return out
}
