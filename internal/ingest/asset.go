package ingest

import (
	"time"
)

// WireTimeFormat is the timestamp layout the ingest API expects.
const WireTimeFormat = "2006-01-02 15:04:05"

// MetadataField is one free-form assetMetadata entry.
type MetadataField struct {
	FieldName string `json:"fieldName"`
	JSONValue any    `json:"jsonValue"`
}

// ImageSize builds the standard image-dimensions metadata field.
func ImageSize(width, height int) MetadataField {
	return MetadataField{
		FieldName: "imageSize",
		JSONValue: map[string]int{"width": width, "height": height},
	}
}

// ImageAsset is one image entry in the ingest request, in wire form.
type ImageAsset struct {
	Action              string         `json:"action"`
	StorageSrcPath      string         `json:"storageSrcPath"`
	StorageSrcKey       string         `json:"storageSrcKey"`
	Identifier          string         `json:"identifier"`
	Space               string         `json:"space"`
	CreatedByAgent      string         `json:"createdByAgent"`
	CreateDate          string         `json:"createDate"`
	LastModifiedByAgent string         `json:"lastModifiedByAgent"`
	LastModifiedDate    string         `json:"lastModifiedDate"`
	Status              string         `json:"status"`
	IIIFAPIVersion      string         `json:"iiifApiVersion"`
	PolicyDefinition    map[string]any `json:"policyDefinition"`
	AssetMetadata       []MetadataField `json:"assetMetadata"`
}

// ImageAssetParams collects the caller-supplied fields for
// NewImageAsset. Zero values take the wire defaults.
type ImageAssetParams struct {
	// Identifier is the namespace-qualified asset id, e.g. "AT:MYID1".
	Identifier     string
	Space          string
	StorageSrcPath string
	StorageSrcKey  string

	Action           string
	CreatedByAgent   string
	ModifiedByAgent  string
	PolicyDefinition map[string]any
	AssetMetadata    []MetadataField
}

// NewImageAsset assembles a wire-level image asset entry. Timestamps
// are taken from now, which callers supply already located in the
// service timezone.
func NewImageAsset(p ImageAssetParams, now time.Time) ImageAsset {
	action := p.Action
	if action == "" {
		action = "create"
	}
	createdBy := p.CreatedByAgent
	if createdBy == "" {
		createdBy = "ingestagent"
	}
	modifiedBy := p.ModifiedByAgent
	if modifiedBy == "" {
		modifiedBy = createdBy
	}
	policy := p.PolicyDefinition
	if policy == nil {
		policy = map[string]any{"policyGroupName": "default"}
	}
	metadata := p.AssetMetadata
	if metadata == nil {
		metadata = []MetadataField{}
	}
	timestamp := now.Format(WireTimeFormat)

	return ImageAsset{
		Action:              action,
		StorageSrcPath:      p.StorageSrcPath,
		StorageSrcKey:       p.StorageSrcKey,
		Identifier:          p.Identifier,
		Space:               p.Space,
		CreatedByAgent:      createdBy,
		CreateDate:          timestamp,
		LastModifiedByAgent: modifiedBy,
		LastModifiedDate:    timestamp,
		Status:              "ACTIVE",
		IIIFAPIVersion:      "3",
		PolicyDefinition:    policy,
		AssetMetadata:       metadata,
	}
}
