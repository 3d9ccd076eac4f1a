package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageDataURI(t *testing.T) {
	img, err := ParseImageDataURI("data:image/png;base64,aGVsbG8=")

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("hello"), img.Bytes)
	assert.Equal(t, "PNG", img.ImageType())
}

func TestParseImageDataURI_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":       "",
		"no scheme":   "aGVsbG8=",
		"no comma":    "data:image/png;base64",
		"not image":   "data:text/plain;base64,aGVsbG8=",
		"not base64":  "data:image/png,hello",
		"bad payload": "data:image/png;base64,!!!",
		"no bytes":    "data:image/png;base64,",
	}
	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseImageDataURI(uri)

			require.ErrorIs(t, err, ErrInvalidInput)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "signatureData", verr.Field)
		})
	}
}

func TestImageData_ImageType(t *testing.T) {
	assert.Equal(t, "JPG", (&ImageData{MIMEType: "image/jpeg"}).ImageType())
	assert.Equal(t, "GIF", (&ImageData{MIMEType: "image/gif"}).ImageType())
	assert.Equal(t, "PNG", (&ImageData{MIMEType: "image/webp"}).ImageType())
}
