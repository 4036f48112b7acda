package nuget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/stackaudit/pkg/cache"
	pkgerrors "github.com/matzehuels/stackaudit/pkg/errors"
	"github.com/matzehuels/stackaudit/pkg/integrations"
)

// DefaultAPIURL is the public NuGet gallery API.
const DefaultAPIURL = "https://api.nuget.org"

// ErrMissingField is returned when a registry document lacks a field the
// lookup depends on (catalogEntry in the leaf, license in the catalog entry).
var ErrMissingField = errors.New("missing field")

// CatalogEntry is the subset of a NuGet catalog entry used for license reports.
type CatalogEntry struct {
	LicenseURL        string `json:"licenseUrl"`
	LicenseExpression string `json:"licenseExpression,omitempty"`
	Description       string `json:"description"`
}

// License returns the license reference: the license URL when present,
// otherwise the SPDX license expression.
func (e CatalogEntry) License() string {
	if e.LicenseURL != "" {
		return e.LicenseURL
	}
	return e.LicenseExpression
}

// Options configures a [Client].
type Options struct {
	// APIURL is the registry base URL. Default: [DefaultAPIURL].
	APIURL string

	// FrontendURL is the gallery website used for project links.
	// Default: derived from APIURL by [DefaultFrontendURL].
	FrontendURL string

	// Cache memoizes successful lookups. Default: no caching.
	Cache cache.Cache

	// CacheTTL bounds cached entries; zero keeps them for the cache's lifetime.
	CacheTTL time.Duration

	// HTTPClient overrides the shared client (10s timeout).
	HTTPClient *http.Client
}

// Client resolves package metadata against a NuGet v3 registry.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	apiURL      string
	frontendURL string
}

// NewClient creates a NuGet client. Zero-value options select the public gallery.
func NewClient(opts Options) *Client {
	api := opts.APIURL
	if api == "" {
		api = DefaultAPIURL
	}
	frontend := opts.FrontendURL
	if frontend == "" {
		frontend = DefaultFrontendURL(api)
	}

	base := integrations.NewClient(opts.Cache, "nuget:", opts.CacheTTL, map[string]string{
		"Accept": "application/json",
	}).WithHTTPClient(opts.HTTPClient)

	return &Client{
		Client:      base,
		apiURL:      strings.TrimRight(api, "/"),
		frontendURL: strings.TrimRight(frontend, "/"),
	}
}

// DefaultFrontendURL derives the gallery website from an API URL by replacing
// the first occurrence of "api" with "www".
func DefaultFrontendURL(apiURL string) string {
	return strings.Replace(apiURL, "api", "www", 1)
}

// APIURL returns the registry base URL.
func (c *Client) APIURL() string { return c.apiURL }

// FrontendURL returns the gallery website URL.
func (c *Client) FrontendURL() string { return c.frontendURL }

// SemVer2 normalizes a NuGet version for registration lookups: a four-part
// version whose last part is exactly "0" loses that part. Every other
// version, including "1.2.3.00", is returned unchanged.
func SemVer2(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) == 4 && parts[3] == "0" {
		return strings.Join(parts[:3], ".")
	}
	return version
}

// LeafURL returns the registration leaf URL for a package version.
func (c *Client) LeafURL(name, version string) string {
	return integrations.JoinURL(c.apiURL, "v3", "registration3", strings.ToLower(name), SemVer2(version)+".json")
}

// ProjectURL returns the gallery page of a package version. The version is
// used exactly as declared.
func (c *Client) ProjectURL(name, version string) string {
	return integrations.JoinURL(c.frontendURL, "packages", name, version)
}

// FetchCatalogEntry performs the two-request lookup for one package version.
//
// Returns:
//   - the catalog entry on success; its License is never empty
//   - [integrations.ErrNotFound] if either document is missing
//   - [integrations.ErrNetwork] for transport failures and other non-2xx responses
//   - [ErrMissingField] if catalogEntry or both license fields are absent
//   - an INVALID_PACKAGE or INVALID_INPUT error for unusable names and versions
//   - other errors for JSON decoding failures
func (c *Client) FetchCatalogEntry(ctx context.Context, name, version string) (*CatalogEntry, error) {
	if err := pkgerrors.ValidateNuGetPackageID(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(version) == "" {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "package %s has no version", name)
	}

	key := cache.Key("catalog", strings.ToLower(name), SemVer2(version))

	var entry CatalogEntry
	err := c.Cached(ctx, key, false, &entry, func() error {
		return c.fetch(ctx, name, version, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) fetch(ctx context.Context, name, version string, entry *CatalogEntry) error {
	var leaf registrationLeaf
	if err := c.Get(ctx, c.LeafURL(name, version), &leaf); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: nuget registration %s %s", err, name, version)
		}
		return err
	}
	if leaf.CatalogEntry == "" {
		return fmt.Errorf("%w: catalogEntry in registration of %s %s", ErrMissingField, name, version)
	}
	if err := pkgerrors.ValidateURL(string(leaf.CatalogEntry)); err != nil {
		return fmt.Errorf("catalog entry of %s %s: %w", name, version, err)
	}

	var data CatalogEntry
	if err := c.Get(ctx, string(leaf.CatalogEntry), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: nuget catalog entry %s %s", err, name, version)
		}
		return err
	}
	if data.License() == "" {
		return fmt.Errorf("%w: licenseUrl in catalog entry of %s %s", ErrMissingField, name, version)
	}

	*entry = data
	return nil
}

type registrationLeaf struct {
	CatalogEntry catalogRef `json:"catalogEntry"`
}

// catalogRef accepts both leaf shapes: a bare URL string, or an inlined
// object carrying the URL in "@id" (registration pages).
type catalogRef string

func (r *catalogRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID string `json:"@id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = catalogRef(obj.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = catalogRef(s)
	return nil
}
