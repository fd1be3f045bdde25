package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gensig/database"
	"gensig/nodes/file"
	"gensig/syntax"
)

// Extension is the extension of source files.
const Extension = ".gsig"

// Layer is a directory of source files compiled together. Later layers see
// the declarations of earlier ones.
type Layer struct {
	Name  string
	Paths []string
	Files []*file.FileNode
}

// Filter matches the nodes from the layer's files, including syntax errors
// in files that could not be parsed.
func (layer Layer) Filter() func(node database.Node) bool {
	return func(node database.Node) bool {
		return slices.Contains(layer.Paths, database.GetSpanFact(node).Path)
	}
}

func ReadFile(db *database.Db, path string) (*file.FileNode, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	file, _ := syntax.Parse(db, path, string(source), file.ParseFile)
	return file, nil
}

func ReadLayers(db *database.Db, path string, cwd string) (Layer, error) {
	if cwd != "" {
		var err error
		path, err = filepath.Rel(cwd, path)
		if err != nil {
			return Layer{}, err
		}
	} else if !filepath.IsAbs(path) {
		return Layer{}, fmt.Errorf("layer path must be absolute")
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{Name: path}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == Extension {
			filePath := filepath.Join(path, entry.Name())
			file, err := ReadFile(db, filePath)
			if err != nil {
				return Layer{}, err
			}

			layer.Paths = append(layer.Paths, filePath)
			if file != nil {
				layer.Files = append(layer.Files, file)
			}
		}
	}

	return layer, nil
}
