package endpoint

import (
	"path"
	"regexp"
	"strings"
)

var bracketRe = regexp.MustCompile(`\[([.\w]+)(?::(\w+))?\]`)

// RouteFor derives the route of a view file.
// view is relative to the source root and slash separated; sitesDir is the
// sites directory relative to the same root ("." when they coincide).
//
//	RouteFor("sites/index.vue", "sites")      → "/"
//	RouteFor("sites/blog/index.vue", "sites") → "/blog"
//	RouteFor("sites/blog/post.vue", "sites")  → "/blog/post"
//	RouteFor("sites/blog/[id].vue", "sites")  → "/blog/:id"
func RouteFor(view, sitesDir string) string {
	rel := view
	if sitesDir != "" && sitesDir != "." {
		rel = strings.TrimPrefix(rel, strings.TrimSuffix(sitesDir, "/")+"/")
	}

	// A dotfile such as ".gitkeep" has no extension to strip.
	if ext := path.Ext(rel); ext != "" && len(path.Base(rel)) > len(ext) {
		rel = rel[:len(rel)-len(ext)]
	}

	// Only the final segment collapses; "index/" directories stay routable.
	if rel == "index" {
		rel = ""
	}
	rel = strings.TrimSuffix(rel, "/index")

	rel = convertParams(rel)
	if rel == "" {
		return "/"
	}
	return "/" + rel
}

// convertParams converts bracket segments to router notation:
//   - [id] → :id
//   - [id:int] → :id
//   - [...slug] → *slug
func convertParams(p string) string {
	return bracketRe.ReplaceAllStringFunc(p, func(match string) string {
		inner := match[1 : len(match)-1]

		if strings.HasPrefix(inner, "...") {
			return "*" + inner[3:]
		}
		if idx := strings.Index(inner, ":"); idx != -1 {
			return ":" + inner[:idx]
		}
		return ":" + inner
	})
}
