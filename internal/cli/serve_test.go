package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// fakeContent serves canned per-node content.
type fakeContent struct {
	content map[string][]byte
}

func (f *fakeContent) FetchTree(ctx context.Context, source string) (*hierarchy.Tree, error) {
	return nil, nil
}

func (f *fakeContent) FetchContent(ctx context.Context, nodeID string) ([]byte, error) {
	return f.content[nodeID], nil
}

func serveTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree := hierarchy.New()
	for _, n := range []struct{ id, parent string }{
		{"R", ""}, {"A", "R"}, {"B", "R"},
	} {
		if err := tree.AddNode(hierarchy.Node{ID: n.id, Name: n.id}, n.parent); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := New(io.Discard, LogInfo)
	srv := &serveServer{
		logger:  c.Logger,
		trees:   &treeHolder{tree: serveTree(t)},
		content: &fakeContent{content: map[string][]byte{"A": []byte(`{"body":"alpha"}`)}},
	}
	ts := httptest.NewServer(srv.router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(body, "ok") {
		t.Errorf("body = %q", body)
	}
}

func TestServeTree(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/api/tree")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	tree, err := hierarchy.UnmarshalTree([]byte(body))
	if err != nil {
		t.Fatalf("response is not a valid snapshot: %v", err)
	}
	if tree.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", tree.NodeCount())
	}
}

func TestServeNodeContent(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/node/A")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "alpha") {
		t.Errorf("body = %q", body)
	}

	resp, _ = get(t, ts.URL+"/api/node/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown node status = %d, want 404", resp.StatusCode)
	}
}

func TestServeExportDOT(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/api/export.dot?selected=A")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "layout=twopi") {
		t.Errorf("DOT output missing radial layout:\n%s", body)
	}
	if !strings.Contains(body, `"R" -- "A"`) {
		t.Errorf("DOT output missing edge:\n%s", body)
	}
}

func TestServeExportUnknownFormat(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := get(t, ts.URL+"/api/export.gif")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServeWithoutContentSource(t *testing.T) {
	c := New(io.Discard, LogInfo)
	srv := &serveServer{logger: c.Logger, trees: &treeHolder{tree: serveTree(t)}}
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/api/node/A")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a content source", resp.StatusCode)
	}
}
