package client

import (
	"iiifingest/internal/asset"
	"iiifingest/internal/identity"
	"iiifingest/internal/manifest"
)

// ManifestMetadata is the caller-supplied manifest-level metadata.
// The json tags let CLI users keep it in a metadata file; labels and
// summary accept either plain strings or lang/value objects.
type ManifestMetadata struct {
	Labels            manifest.TextList         `json:"labels"`
	Behaviors         []string                  `json:"behaviors,omitempty"`
	Rights            string                    `json:"rights,omitempty"`
	RequiredStatement []manifest.Entry          `json:"required_statement,omitempty"`
	Metadata          []manifest.Entry          `json:"metadata,omitempty"`
	Summary           manifest.TextList         `json:"summary,omitempty"`
	Providers         []manifest.ProviderSource `json:"providers,omitempty"`
	Thumbnails        []manifest.Thumbnail      `json:"thumbnails,omitempty"`
	DefaultLang       string                    `json:"default_lang,omitempty"`
	ServiceType       string                    `json:"service_type,omitempty"`
	ServiceProfile    string                    `json:"service_profile,omitempty"`
}

// CreateManifest builds a presentation manifest describing the
// uploaded assets, one canvas per asset in input order. An empty
// manifestName generates a GEN-prefixed random name; preziVersion
// defaults to 3.
func (c *Client) CreateManifest(meta ManifestMetadata, assets []*asset.Asset, manifestName string, preziVersion int) (*manifest.Manifest, string, error) {
	if manifestName == "" {
		manifestName = "GEN" + identity.RandomToken()
	}
	baseURL := c.ManifestURL(manifestName, preziVersion)

	canvases := make([]manifest.CanvasSource, 0, len(assets))
	for _, a := range assets {
		canvases = append(canvases, manifest.CanvasSource{
			AssetID:     a.AssetID,
			Width:       a.Width,
			Height:      a.Height,
			Label:       manifest.Plain(a.Label),
			Metadata:    metadataEntries(a.Metadata),
			ImageURL:    c.AssetURL(a.AssetID),
			ImageSuffix: "/full/max/0/default" + a.Extension,
			Format:      a.Format,
		})
	}

	doc, err := manifest.Build(manifest.Params{
		BaseURL:           baseURL,
		Labels:            meta.Labels,
		Canvases:          canvases,
		Behaviors:         meta.Behaviors,
		DefaultLang:       meta.DefaultLang,
		ServiceType:       meta.ServiceType,
		ServiceProfile:    meta.ServiceProfile,
		Metadata:          meta.Metadata,
		Rights:            meta.Rights,
		RequiredStatement: meta.RequiredStatement,
		Summary:           meta.Summary,
		Providers:         meta.Providers,
		Thumbnails:        meta.Thumbnails,
	})
	if err != nil {
		return nil, "", err
	}
	return doc, baseURL, nil
}

func metadataEntries(entries []asset.MetadataEntry) []manifest.Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]manifest.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, manifest.Entry{
			Label:     e.Label,
			Value:     e.Value,
			LabelLang: e.LabelLang,
			ValueLang: e.ValueLang,
		})
	}
	return out
}
