package menu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultMenuParses(t *testing.T) {
	tree := NewTree(Providers{"sessions": SessionsProvider(fakeSessions{{Name: "main", Windows: 2}})})
	if err := tree.Refresh(DefaultSource()); err != nil {
		t.Fatalf("default menu: %v", err)
	}
	sw, ok := tree.Find("session:switch")
	if !ok || sw.Kind != KindSubmenu {
		t.Fatalf("expected session switch submenu")
	}
	if len(sw.Children()) != 1 || sw.Children()[0].Target != "main" {
		t.Fatalf("expected provider to fill switch submenu")
	}
	if _, ok := tree.FindSubmenu("layout"); !ok {
		t.Fatalf("expected layout submenu")
	}
}

func TestParseBareList(t *testing.T) {
	root, err := Parse([]byte("- label: One\n- separator: true\n- label: Two\n  command: [kill-pane]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(root.Items) != 3 || !root.Items[1].Separator || root.Items[2].Command[0] != "kill-pane" {
		t.Fatalf("unexpected parse result %+v", root)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"scalar":         "hello",
		"separator kids": "items:\n  - separator: true\n    items:\n      - label: x\n",
		"missing label":  "items:\n  - hint: nothing\n",
		"bad yaml":       "items: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	if err := os.WriteFile(path, []byte("items:\n  - label: '&Zoom'\n    command: [resize-pane, -Z]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	root, err := FileSource{Path: path}.Tree()
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(root.Items) != 1 || root.Items[0].Label != "&Zoom" {
		t.Fatalf("unexpected root %+v", root)
	}

	_, err = FileSource{Path: filepath.Join(dir, "missing.yaml")}.Tree()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("items:\n  - {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = FileSource{Path: bad}.Tree()
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}
