package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_IncludeFile(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		want   bool
	}{
		{name: "no includes takes everything", path: "a/b.txt", want: true},
		{name: "name include at depth", filter: Filter{Include: []string{"*.dll"}}, path: "x/y/app.dll", want: true},
		{name: "name include miss", filter: Filter{Include: []string{"*.dll"}}, path: "app.pdb", want: false},
		{name: "path include", filter: Filter{Include: []string{"content/**"}}, path: "content/css/site.css", want: true},
		{name: "path include miss", filter: Filter{Include: []string{"content/**"}}, path: "scripts/site.js", want: false},
		{name: "name exclude wins over include", filter: Filter{Include: []string{"*"}, Exclude: []string{"*.pdb"}}, path: "bin/app.pdb", want: false},
		{name: "path exclude", filter: Filter{Exclude: []string{"config/local.json"}}, path: "config/local.json", want: false},
		{name: "path exclude leaves siblings", filter: Filter{Exclude: []string{"config/local.json"}}, path: "config/app.json", want: true},
		{name: "root file dropped", filter: Filter{ExcludeRootFiles: true}, path: "readme.md", want: false},
		{name: "nested file kept", filter: Filter{ExcludeRootFiles: true}, path: "db/readme.md", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.filter.compile()
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.includeFile(tt.path))
		})
	}
}

func TestFilter_SkipDir(t *testing.T) {
	m, err := Filter{Exclude: []string{"node_modules", "docs/internal"}}.compile()
	require.NoError(t, err)

	for _, dir := range []string{"obj", "src/obj", ".git", "a/.hg", "web/node_modules", "docs/internal"} {
		assert.True(t, m.skipDir(dir), dir)
	}
	for _, dir := range []string{"objects", "src", "docs", "docs/public"} {
		assert.False(t, m.skipDir(dir), dir)
	}
}

func TestFilter_SkipDir_RootDirs(t *testing.T) {
	m, err := Filter{ExcludeRootDirs: []string{"tools", "test*"}}.compile()
	require.NoError(t, err)

	for _, dir := range []string{"tools", "tests", "testdata"} {
		assert.True(t, m.skipDir(dir), dir)
	}
	for _, dir := range []string{"lib/tools", "db/tests", "toolsets"} {
		assert.False(t, m.skipDir(dir), dir)
	}
	assert.True(t, m.includeFile("lib/tools/b.txt"))
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter{Include: []string{"[a-"}}.compile()
	assert.Error(t, err)

	_, err = Filter{Exclude: []string{" "}}.compile()
	assert.Error(t, err)

	_, err = Filter{ExcludeRootDirs: []string{"a/b"}}.compile()
	assert.Error(t, err)
}
