package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("class A {}\n"), 0644))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Models/Customer.cs")
	touch(t, root, "Models/Order.CS")
	touch(t, root, "Program.cs")
	touch(t, root, "README.md")
	touch(t, root, "obj/Debug/Generated.cs")
	touch(t, root, "bin/Tool.cs")

	entries, err := NewWalker().Walk(root)
	require.NoError(t, err)

	var rels []string
	for _, e := range entries {
		rels = append(rels, filepath.ToSlash(e.Rel))
		assert.True(t, filepath.IsAbs(e.Path))
	}
	assert.Equal(t, []string{"Models/Customer.cs", "Models/Order.CS", "Program.cs"}, rels)
}

func TestWalkRejectsFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Program.cs")

	_, err := NewWalker().Walk(filepath.Join(root, "Program.cs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is not a directory")

	_, err = NewWalker().Walk(filepath.Join(root, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat root")
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name           string
		rel            string
		definitionFile bool
		want           string
	}{
		{name: "definition file", rel: "Models/Customer.cs", definitionFile: true, want: "out/Models/Customer.d.ts"},
		{name: "module file", rel: "Models/Customer.cs", definitionFile: false, want: "out/Models/Customer.ts"},
		{name: "root file", rel: "Program.cs", definitionFile: true, want: "out/Program.d.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath("out", filepath.FromSlash(tt.rel), tt.definitionFile)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("a/b/C.cs"))
	assert.True(t, IsSource("C.CS"))
	assert.False(t, IsSource("C.cs.bak"))
	assert.False(t, IsSource("C.ts"))
}

func TestSkipDir(t *testing.T) {
	assert.True(t, SkipDir("obj"))
	assert.True(t, SkipDir("node_modules"))
	assert.False(t, SkipDir("Models"))
}
