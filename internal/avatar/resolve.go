// Package avatar resolves, fetches, decodes and installs the viewer's avatar.
package avatar

import (
	"net/url"

	"github.com/Faultbox/vrmviewer/internal/config"
)

const (
	// QueryParam is the query parameter naming the avatar.
	QueryParam = "vrmModel"

	// DefaultIdentifier is used when the query names no avatar.
	DefaultIdentifier = "astolfo"
)

// ResolveIdentifier returns the vrmModel value, or DefaultIdentifier when it
// is absent or empty. The value is not validated.
func ResolveIdentifier(query url.Values) string {
	if id := query.Get(QueryParam); id != "" {
		return id
	}
	return DefaultIdentifier
}

// IdentifierFromConfig resolves the identifier from the viewer settings. An
// explicit model wins over the raw query string.
func IdentifierFromConfig(cfg config.ViewerConfig) (string, error) {
	query, err := url.ParseQuery(cfg.Query)
	if err != nil {
		return "", err
	}
	if cfg.Model != "" {
		query.Set(QueryParam, cfg.Model)
	}
	return ResolveIdentifier(query), nil
}

// AssetPath returns the relative path of the avatar file.
func AssetPath(id string) string {
	return "./models/" + id + ".vrm"
}
