package asset

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"iiifingest/internal/errs"
)

// ImageInfo describes a probed image header.
type ImageInfo struct {
	Width     int
	Height    int
	Format    string // mime type
	Extension string // preferred extension, with leading dot
}

var formatInfo = map[string]struct{ mime, ext string }{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"tiff": {"image/tiff", ".tif"},
	"bmp":  {"image/bmp", ".bmp"},
	"webp": {"image/webp", ".webp"},
}

var mimeExtensions = func() map[string]string {
	m := make(map[string]string, len(formatInfo))
	for _, info := range formatInfo {
		m[info.mime] = info.ext
	}
	return m
}()

// Probe reads an image header and returns its dimensions and format
// without decoding pixel data.
func Probe(r io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, errs.Wrap(errs.ErrUnreadableImage, err, "asset", "decode image header")
	}
	info, ok := formatInfo[format]
	if !ok {
		return ImageInfo{}, errs.Wrap(errs.ErrUnreadableImage, nil, "asset", fmt.Sprintf("unsupported image format %q", format))
	}
	return ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    info.mime,
		Extension: info.ext,
	}, nil
}

// ProbeFile probes an image on disk.
func ProbeFile(path string) (ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, errs.Wrap(errs.ErrUnreadableImage, err, "asset", "open image")
	}
	defer file.Close()
	return Probe(file)
}

// ProbeBytes probes an in-memory image.
func ProbeBytes(data []byte) (ImageInfo, error) {
	return Probe(bytes.NewReader(data))
}

// ExtensionForMime returns the preferred file extension for a known
// image mime type, or the empty string.
func ExtensionForMime(mime string) string {
	return mimeExtensions[mime]
}
