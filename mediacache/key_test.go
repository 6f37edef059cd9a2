package mediacache

import "testing"

func TestListKeyEncodesListAndPage(t *testing.T) {
	if ListKey("popular", 1) != ListKey("popular", 1) {
		t.Fatal("identical list requests must produce the same key")
	}
	if ListKey("popular", 1) == ListKey("popular", 2) {
		t.Error("different pages must produce different keys")
	}
	if ListKey("popular", 1) == ListKey("top_rated", 1) {
		t.Error("different lists must produce different keys")
	}
}

func TestSearchKeyEncodesKindQueryAndPage(t *testing.T) {
	if SearchKey("movie", "blade runner", 1) != SearchKey("movie", "blade runner", 1) {
		t.Fatal("identical search requests must produce the same key")
	}
	if SearchKey("movie", "blade runner", 1) == SearchKey("tv", "blade runner", 1) {
		t.Error("different kinds must produce different keys")
	}
	if SearchKey("movie", "blade runner", 1) == SearchKey("movie", "blade runner 2049", 1) {
		t.Error("different queries must produce different keys")
	}
	if SearchKey("movie", "blade runner", 1) == SearchKey("movie", "blade runner", 2) {
		t.Error("different pages must produce different keys")
	}
}
