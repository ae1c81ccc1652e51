package ingest

// GlobalSettings carries the request-wide action and space defaults.
type GlobalSettings struct {
	ActionDefault string `json:"actionDefault"`
	SpaceDefault  string `json:"spaceDefault"`
}

// MediaAssets groups asset entries by media type. The downstream
// service requires every media-type array to be present even when
// empty; only image is populated by this client.
type MediaAssets struct {
	Audio []any        `json:"audio"`
	Video []any        `json:"video"`
	Text  []any        `json:"text"`
	Image []ImageAsset `json:"image"`
}

// Request is the ingest request envelope.
type Request struct {
	GlobalSettings GlobalSettings `json:"globalSettings"`
	Metadata       map[string]any `json:"metadata"`
	Assets         MediaAssets    `json:"assets"`
	Manifest       any            `json:"manifest"`
}

// WrapRequest assembles the fixed request envelope around the image
// assets and manifest. An empty actionDefault means "upsert".
func WrapRequest(metadata map[string]any, assets []ImageAsset, manifest any, spaceDefault, actionDefault string) Request {
	if actionDefault == "" {
		actionDefault = "upsert"
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	if manifest == nil {
		manifest = map[string]any{}
	}
	if assets == nil {
		assets = []ImageAsset{}
	}
	return Request{
		GlobalSettings: GlobalSettings{
			ActionDefault: actionDefault,
			SpaceDefault:  spaceDefault,
		},
		Metadata: metadata,
		Assets: MediaAssets{
			Audio: []any{},
			Video: []any{},
			Text:  []any{},
			Image: assets,
		},
		Manifest: manifest,
	}
}
