package main_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gensig/database"
	"gensig/driver"
	"gensig/machine"
	"gensig/nodes/file"
	"gensig/syntax"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestFiles(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	testDir := filepath.Join(cwd, "tests")

	entries, err := os.ReadDir(testDir)
	if err != nil {
		panic(err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != driver.Extension {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			path := filepath.Join(testDir, entry.Name())
			source, err := os.ReadFile(path)
			if err != nil {
				panic(err)
			}

			filter := func(node database.Node) bool {
				return true
			}

			db, root := driver.MakeRoot(machine.DefaultLimits())

			f, syntaxError := syntax.Parse(db, entry.Name(), string(source), file.ParseFile)
			if syntaxError != nil {
				t.Fatalf("syntax error: %v", syntaxError)
			}

			driver.Compile(db, root, []*file.FileNode{f}, driver.Options{Verify: true, Minimality: true})

			var buf bytes.Buffer
			driver.WriteSignatures(db, filter, &buf)
			driver.WriteFeedback(db, filter, nil, &buf)

			snaps.WithConfig(snaps.Dir(filepath.Join(testDir, "__snapshots__")), snaps.Filename(entry.Name())).MatchStandaloneSnapshot(t, buf.String())
		})
	}
}

func TestFixturesParse(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("tests", "*"+driver.Extension))
	if err != nil {
		t.Fatal(err)
	}

	if len(paths) == 0 {
		t.Fatal("no fixtures")
	}

	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		db := database.NewDb(nil)
		if _, syntaxError := syntax.Parse(db, path, string(source), file.ParseFile); syntaxError != nil {
			t.Errorf("%s: %v", path, syntaxError)
		}
	}
}
