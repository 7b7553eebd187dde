package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultMenu []byte

// FileSource reads the menu description from a YAML file. An empty path
// falls back to the built-in menu.
type FileSource struct {
	Path string
}

func (s FileSource) Tree() (Entry, error) {
	if strings.TrimSpace(s.Path) == "" {
		return Parse(defaultMenu)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Entry{}, fmt.Errorf("read menu file: %w", err)
	}
	root, err := Parse(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return root, nil
}

// DefaultSource returns the built-in menu.
func DefaultSource() Source {
	return FileSource{}
}

// Parse decodes a YAML menu document. The document is either a mapping with
// an items list or a bare list of entries.
func Parse(data []byte) (Entry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Entry{}, fmt.Errorf("parse menu: %w", err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return Entry{}, errors.New("parse menu: empty document")
	}
	doc := node.Content[0]
	var root Entry
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&root.Items); err != nil {
			return Entry{}, fmt.Errorf("parse menu: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&root); err != nil {
			return Entry{}, fmt.Errorf("parse menu: %w", err)
		}
	default:
		return Entry{}, fmt.Errorf("parse menu: unexpected top-level %s", kindName(doc.Kind))
	}
	if err := validate(root.Items, "items"); err != nil {
		return Entry{}, err
	}
	return root, nil
}

func validate(entries []Entry, path string) error {
	for i, e := range entries {
		where := fmt.Sprintf("%s[%d]", path, i)
		if e.Separator && (len(e.Items) > 0 || e.Provider != "") {
			return fmt.Errorf("parse menu: %s: separator cannot have children", where)
		}
		if !e.Separator && strings.TrimSpace(e.Label) == "" && strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("parse menu: %s: entry needs a label or id", where)
		}
		if err := validate(e.Items, where+".items"); err != nil {
			return err
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "node"
	}
}
