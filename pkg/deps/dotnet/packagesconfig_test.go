package dotnet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/errors"
)

func TestPackagesConfig_Supports(t *testing.T) {
	parser := &PackagesConfig{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"packages.config", true},
		{"Packages.config", false},
		{"packages.config.bak", false},
		{"app.csproj", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.Supports(tt.filename))
		})
	}
}

func TestPackagesConfig_Parse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "packages.config")
	content := `<?xml version="1.0" encoding="utf-8"?>
<packages>
  <package id="Newtonsoft.Json" version="12.0.1" targetFramework="net472" />
  <package id="EntityFramework" version="6.2.0.0" targetFramework="net472" developmentDependency="false" />
  <package id="log4net" version="2.0.8" />
</packages>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	parser := &PackagesConfig{}
	got, err := parser.Parse(path)
	require.NoError(t, err)

	want := []deps.Declaration{
		{Name: "Newtonsoft.Json", Version: "12.0.1", Manifest: path},
		{Name: "EntityFramework", Version: "6.2.0.0", Manifest: path},
		{Name: "log4net", Version: "2.0.8", Manifest: path},
	}
	assert.Equal(t, want, got)
}

func TestPackagesConfig_ParseMissingFile(t *testing.T) {
	parser := &PackagesConfig{}
	_, err := parser.Parse(filepath.Join(t.TempDir(), "packages.config"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
}

func TestParsePackagesConfig(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    []deps.Declaration
		wantErr bool
	}{
		{
			name: "empty packages element",
			doc:  `<?xml version="1.0"?><packages></packages>`,
			want: nil,
		},
		{
			name: "self-closing root",
			doc:  `<packages/>`,
			want: nil,
		},
		{
			name: "nested package elements",
			doc:  `<root><group><package id="A" version="1.0"/></group><package id="B" version="2.0"/></root>`,
			want: []deps.Declaration{{Name: "A", Version: "1.0", Manifest: "m"}, {Name: "B", Version: "2.0", Manifest: "m"}},
		},
		{
			name: "missing attributes",
			doc:  `<packages><package id="OnlyId"/><package version="9.9"/></packages>`,
			want: []deps.Declaration{{Name: "OnlyId", Manifest: "m"}, {Version: "9.9", Manifest: "m"}},
		},
		{
			name: "attribute values verbatim",
			doc:  `<packages><package id=" Spaced.Name " version="1.0.0-beta+build.7"/></packages>`,
			want: []deps.Declaration{{Name: " Spaced.Name ", Version: "1.0.0-beta+build.7", Manifest: "m"}},
		},
		{
			name: "namespaced elements",
			doc:  `<p:packages xmlns:p="urn:x"><p:package id="A" version="1"/></p:packages>`,
			want: []deps.Declaration{{Name: "A", Version: "1", Manifest: "m"}},
		},
		{
			name: "entities decoded",
			doc:  `<packages><package id="A&amp;B" version="1"/></packages>`,
			want: []deps.Declaration{{Name: "A&B", Version: "1", Manifest: "m"}},
		},
		{
			name: "byte order mark",
			doc:  "\xEF\xBB\xBF<?xml version=\"1.0\" encoding=\"utf-8\"?><packages><package id=\"A\" version=\"1\"/></packages>",
			want: []deps.Declaration{{Name: "A", Version: "1", Manifest: "m"}},
		},
		{
			name: "legacy charset declaration",
			doc:  `<?xml version="1.0" encoding="windows-1252"?><packages><package id="A" version="1"/></packages>`,
			want: []deps.Declaration{{Name: "A", Version: "1", Manifest: "m"}},
		},
		{
			name: "comments and other elements",
			doc:  `<packages><!-- <package id="Hidden" version="0"/> --><other id="X"/></packages>`,
			want: nil,
		},
		{name: "empty document", doc: ``, wantErr: true},
		{name: "whitespace only", doc: "  \n\t", wantErr: true},
		{name: "declaration only", doc: `<?xml version="1.0"?>`, wantErr: true},
		{name: "plain text", doc: `not xml at all`, wantErr: true},
		{name: "unclosed root", doc: `<packages><package id="A" version="1"/>`, wantErr: true},
		{name: "mismatched tags", doc: `<packages></package>`, wantErr: true},
		{name: "unquoted attribute", doc: `<packages><package id=A version="1"/></packages>`, wantErr: true},
		{
			name:    "second root element",
			doc:     `<packages><package id="A" version="1.0"/></packages><packages><package id="B" version="2.0"/></packages>`,
			wantErr: true,
		},
		{name: "text after root", doc: `<packages><package id="A" version="1.0"/></packages>trailing`, wantErr: true},
		{name: "text before root", doc: `leading<packages/>`, wantErr: true},
		{
			name: "whitespace and comments around root",
			doc:  "<?xml version=\"1.0\"?>\n<!-- generated -->\n<packages><package id=\"A\" version=\"1\"/></packages>\n<!-- end -->\n",
			want: []deps.Declaration{{Name: "A", Version: "1", Manifest: "m"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePackagesConfig(strings.NewReader(tt.doc), "m")
			if tt.wantErr {
				require.Error(t, err, "got %+v", got)
				assert.Equal(t, errors.ErrCodeInvalidManifest, errors.GetCode(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageManifest(t *testing.T) {
	p, ok := Language.Manifest("packages.config")
	require.True(t, ok, "Language should provide a packages.config parser")
	assert.Equal(t, "packages.config", p.Type())

	_, ok = Language.Manifest("project.json")
	assert.False(t, ok, "Language should not parse project.json")
}
