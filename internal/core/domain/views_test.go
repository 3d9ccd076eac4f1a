package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpload_IsPDF(t *testing.T) {
	var none *Upload
	assert.False(t, none.IsPDF())
	assert.True(t, (&Upload{Filename: "Release.PDF"}).IsPDF())
	assert.True(t, (&Upload{Filename: "upload", ContentType: "application/pdf"}).IsPDF())
	assert.False(t, (&Upload{Filename: "release.docx"}).IsPDF())
}
