// Package asset models one image on its way into the delivery
// service: a derived identifier, probed dimensions and format, and,
// after upload, the storage key it landed under.
package asset

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"iiifingest/internal/errs"
	"iiifingest/internal/identity"
	"iiifingest/internal/storage"
)

// MetadataEntry is one ordered descriptive metadata pair.
type MetadataEntry struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	LabelLang string `json:"label_lang,omitempty"`
	ValueLang string `json:"value_lang,omitempty"`
}

// Overrides carries optional values that replace probed or derived
// fields. Zero values mean "infer".
type Overrides struct {
	AssetID string
	// Width and Height are honored only when both are set.
	Width     int
	Height    int
	Format    string
	Extension string
	Label     string
	Metadata  []MetadataEntry
}

// Asset is a value object for the duration of one ingest operation.
// It is created from a file or buffer, mutated exactly once by Upload
// (which sets StorageKey), and read by the manifest and ingest
// builders afterwards.
type Asset struct {
	AssetID    string
	StorageKey string
	Width      int
	Height     int
	Format     string
	Extension  string
	Label      string
	Metadata   []MetadataEntry

	sourcePath string
	sourceData []byte
}

// FromFile builds an Asset from an image on disk, probing the header
// for anything Overrides leaves unset. A file that cannot be parsed
// as an image fails here, before any network traffic.
func FromFile(path string, ov Overrides) (*Asset, error) {
	a, err := newAsset(ov, func() (ImageInfo, error) { return ProbeFile(path) })
	if err != nil {
		return nil, err
	}
	a.sourcePath = path
	return a, nil
}

// FromBuffer builds an Asset from in-memory image bytes. Format
// detection falls back to sniffing the image header when no explicit
// format override is given.
func FromBuffer(data []byte, ov Overrides) (*Asset, error) {
	a, err := newAsset(ov, func() (ImageInfo, error) { return ProbeBytes(data) })
	if err != nil {
		return nil, err
	}
	a.sourceData = data
	return a, nil
}

func newAsset(ov Overrides, probe func() (ImageInfo, error)) (*Asset, error) {
	if ov.AssetID != "" {
		if err := identity.Validate(ov.AssetID); err != nil {
			return nil, err
		}
	}

	a := &Asset{
		AssetID:   ov.AssetID,
		Width:     ov.Width,
		Height:    ov.Height,
		Format:    ov.Format,
		Extension: ov.Extension,
		Label:     ov.Label,
		Metadata:  ov.Metadata,
	}

	needDims := ov.Width == 0 || ov.Height == 0
	if needDims || a.Format == "" {
		info, err := probe()
		if err != nil {
			return nil, err
		}
		if needDims {
			a.Width = info.Width
			a.Height = info.Height
		}
		if a.Format == "" {
			a.Format = info.Format
		}
	}
	if a.Extension == "" {
		a.Extension = ExtensionForMime(a.Format)
	}
	if a.Label == "" {
		a.Label = a.AssetID
	}
	return a, nil
}

// Upload sends the asset to the store and records the resulting key.
// Failures propagate unchanged and leave StorageKey untouched; retry
// policy belongs to the store.
func (a *Asset) Upload(ctx context.Context, store storage.Store, bucket, pathPrefix string) (string, error) {
	var (
		key string
		err error
	)
	switch {
	case a.sourcePath != "":
		key, err = store.PutFile(ctx, a.sourcePath, bucket, storage.Key(pathPrefix, filepath.Base(a.sourcePath)))
	case a.sourceData != nil:
		key, err = store.Put(ctx, bytes.NewReader(a.sourceData), bucket, storage.Key(pathPrefix, a.objectName()))
	default:
		return "", errs.Wrap(errs.ErrValidation, nil, "asset", "asset has neither file path nor buffer")
	}
	if err != nil {
		return "", err
	}
	a.StorageKey = key
	return key, nil
}

// objectName derives the storage file name for buffer-backed assets.
func (a *Asset) objectName() string {
	name := a.Label
	if name == "" {
		name = a.AssetID
	}
	if a.Extension != "" && !strings.HasSuffix(name, a.Extension) {
		name += a.Extension
	}
	return name
}
