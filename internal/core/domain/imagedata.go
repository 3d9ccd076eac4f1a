package domain

import (
	"encoding/base64"
	"strings"
)

// ImageData is a decoded signature image.
type ImageData struct {
	// MIMEType is the declared media type, e.g. "image/png".
	MIMEType string

	// Bytes is the decoded raster data.
	Bytes []byte
}

// ParseImageDataURI decodes a base64 image data URI such as
// "data:image/png;base64,iVBOR...". Only image media types are accepted.
func ParseImageDataURI(uri string) (*ImageData, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, Invalid("signatureData", "is required")
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, Invalid("signatureData", "must be a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, Invalid("signatureData", "must be a data URI")
	}
	mediaType, encoding, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, Invalid("signatureData", "must be an image")
	}
	if encoding != "base64" {
		return nil, Invalid("signatureData", "must be base64 encoded")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, Invalid("signatureData", "is not valid base64")
	}
	if len(decoded) == 0 {
		return nil, Invalid("signatureData", "is empty")
	}
	return &ImageData{MIMEType: mediaType, Bytes: decoded}, nil
}

// ImageType returns the short raster type ("PNG", "JPG", "GIF") used by PDF renderers.
func (d *ImageData) ImageType() string {
	switch d.MIMEType {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return "PNG"
	}
}
