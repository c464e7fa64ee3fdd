package endpoint

import "testing"

func TestRouteFor(t *testing.T) {
	tests := []struct {
		view     string
		sitesDir string
		want     string
	}{
		{"sites/index.vue", "sites", "/"},
		{"sites/about.vue", "sites", "/about"},
		{"sites/blog/index.vue", "sites", "/blog"},
		{"sites/blog/post.vue", "sites", "/blog/post"},
		{"sites/blog/[id].vue", "sites", "/blog/:id"},
		{"sites/blog/[id:int].vue", "sites", "/blog/:id"},
		{"sites/docs/[...path].vue", "sites", "/docs/*path"},
		{"sites/users/[userId]/posts/[postId].vue", "sites", "/users/:userId/posts/:postId"},
		{"sites/index/page.vue", "sites", "/index/page"},
		{"sites/reindex.vue", "sites", "/reindex"},
		{"sites/blog/indexes.vue", "sites", "/blog/indexes"},
		{"sites/README", "sites", "/README"},
		{"sites/.DS_Store", "sites", "/.DS_Store"},
		{"sites/blog/.gitkeep", "sites", "/blog/.gitkeep"},
		{"sites/blog/post.draft.vue", "sites", "/blog/post.draft"},
		{".gitkeep", ".", "/.gitkeep"},
		{"index.vue", ".", "/"},
		{"about.vue", ".", "/about"},
		{"views/sites/a.vue", "views/sites", "/a"},
	}

	for _, tt := range tests {
		got := RouteFor(tt.view, tt.sitesDir)
		if got != tt.want {
			t.Errorf("RouteFor(%q, %q) = %q, want %q", tt.view, tt.sitesDir, got, tt.want)
		}
	}
}

func TestConvertParams(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"[id]", ":id"},
		{"[id:int]", ":id"},
		{"projects/[id]", "projects/:id"},
		{"[...slug]", "*slug"},
		{"docs/[...path]", "docs/*path"},
		{"plain/path", "plain/path"},
	}

	for _, tt := range tests {
		got := convertParams(tt.path)
		if got != tt.want {
			t.Errorf("convertParams(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
