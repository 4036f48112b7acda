package dotnet

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"os"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PackagesConfig parses NuGet packages.config manifests.
type PackagesConfig struct{}

func (p *PackagesConfig) Type() string              { return deps.ManifestFilename }
func (p *PackagesConfig) Supports(name string) bool { return name == deps.ManifestFilename }

// Parse reads the manifest at path. See [ParsePackagesConfig].
func (p *PackagesConfig) Parse(path string) ([]deps.Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "open manifest %s", path)
	}
	defer f.Close()

	return ParsePackagesConfig(f, path)
}

// ParsePackagesConfig streams a packages.config document and returns one
// declaration per package element, at any depth, in document order.
// Missing id or version attributes become empty strings. A document that
// is not well-formed or has no root element is an INVALID_MANIFEST error;
// a well-formed document without package elements yields no declarations.
func ParsePackagesConfig(r io.Reader, manifest string) ([]deps.Declaration, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	dec := xml.NewDecoder(br)
	dec.CharsetReader = passthroughCharset

	var (
		out     []deps.Declaration
		hasRoot bool
		depth   int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest %s", manifest)
		}

		var start xml.StartElement
		switch t := tok.(type) {
		case xml.StartElement:
			if hasRoot && depth == 0 {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest %s has more than one root element", manifest)
			}
			hasRoot = true
			depth++
			start = t
		case xml.EndElement:
			depth--
			continue
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest %s has text outside the root element", manifest)
			}
			continue
		default:
			continue
		}
		if start.Name.Local != "package" {
			continue
		}
		out = append(out, deps.Declaration{
			Name:     attr(start, "id"),
			Version:  attr(start, "version"),
			Manifest: manifest,
		})
	}

	if !hasRoot {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest %s has no root element", manifest)
	}
	return out, nil
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// passthroughCharset accepts ASCII-compatible declarations such as
// us-ascii or windows-1252 that Visual Studio sometimes writes. Package
// ids and versions are ASCII, so bytes are passed through unchanged.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
