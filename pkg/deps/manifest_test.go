package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockManifestParserForDetect struct {
	typeName     string
	supportsFunc func(string) bool
}

func (m *mockManifestParserForDetect) Type() string { return m.typeName }
func (m *mockManifestParserForDetect) Supports(filename string) bool {
	if m.supportsFunc != nil {
		return m.supportsFunc(filename)
	}
	return false
}
func (m *mockManifestParserForDetect) Parse(path string) ([]Declaration, error) {
	return nil, nil
}

func TestDetectManifest(t *testing.T) {
	packages := &mockManifestParserForDetect{
		typeName: "packages.config",
		supportsFunc: func(f string) bool {
			return f == "packages.config"
		},
	}
	csproj := &mockManifestParserForDetect{
		typeName: "csproj",
		supportsFunc: func(f string) bool {
			return f == "app.csproj"
		},
	}

	tests := []struct {
		name     string
		path     string
		parsers  []ManifestParser
		wantType string
		wantErr  bool
	}{
		{
			name:     "matches packages.config",
			path:     "/some/path/packages.config",
			parsers:  []ManifestParser{packages, csproj},
			wantType: "packages.config",
			wantErr:  false,
		},
		{
			name:     "matches csproj",
			path:     "/project/app.csproj",
			parsers:  []ManifestParser{packages, csproj},
			wantType: "csproj",
			wantErr:  false,
		},
		{
			name:    "case sensitive no match",
			path:    "/project/Packages.config",
			parsers: []ManifestParser{packages, csproj},
			wantErr: true,
		},
		{
			name:    "no parsers",
			path:    "/project/anything.txt",
			parsers: []ManifestParser{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := DetectManifest(tt.path, tt.parsers...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, parser.Type())
		})
	}
}

func TestDetectManifestFirstMatch(t *testing.T) {
	p1 := &mockManifestParserForDetect{
		typeName: "first",
		supportsFunc: func(f string) bool {
			return f == "test.txt"
		},
	}
	p2 := &mockManifestParserForDetect{
		typeName: "second",
		supportsFunc: func(f string) bool {
			return f == "test.txt"
		},
	}

	parser, err := DetectManifest("/path/test.txt", p1, p2)
	require.NoError(t, err)
	assert.Equal(t, "first", parser.Type(), "the first matching parser wins")
}
