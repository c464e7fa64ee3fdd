// Package routepath canonicalizes request paths before route matching.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// Result is a canonicalized location.
type Result struct {
	// Path is the canonical path, without query or fragment.
	Path string

	// Query is the raw query string, without "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// String returns the path with its query.
func (r Result) String() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// Canonicalize normalizes a local URL ("/blog//post/?page=2#top"):
//   - multiple slashes collapse
//   - "." segments are dropped and ".." segments resolved
//   - the trailing slash is removed, except for "/"
//   - the fragment is discarded
//
// Absolute URLs, backslashes, NUL bytes, malformed percent escapes and ".."
// above the root are rejected.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}
	if strings.HasPrefix(input, "//") || hasScheme(input) {
		return Result{}, ErrInvalidPath
	}

	input, _, _ = strings.Cut(input, "#")
	p, query, _ := strings.Cut(input, "?")

	if strings.Contains(p, "\\") {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(p, "\x00") || strings.Contains(strings.ToUpper(p), "%00") {
		return Result{}, ErrNullByteInPath
	}
	if strings.Contains(p, "%") {
		if err := checkEscapes(p); err != nil {
			return Result{}, err
		}
	}

	var segs []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}

	out := "/" + strings.Join(segs, "/")
	return Result{Path: out, Query: query, Changed: out != p}, nil
}

// hasScheme reports whether s starts with "scheme:".
func hasScheme(s string) bool {
	i := strings.IndexAny(s, ":/?#")
	return i > 0 && s[i] == ':'
}

func checkEscapes(p string) error {
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			continue
		}
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment unescapes one path segment. Outside catch-all parameters a
// decoded "/" is rejected so %2F cannot smuggle extra segments.
func DecodeSegment(segment string, catchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !catchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}
