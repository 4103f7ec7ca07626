package nvretriever

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFormat(t *testing.T) {
	tests := []struct {
		path       string
		wantFormat string
		wantBinary bool
	}{
		{"report.pdf", "pdf", true},
		{"/data/Slides.PPTX", "pptx", true},
		{"contract.docx", "docx", true},
		{"notes.txt", "txt", false},
		{"README.md", "md", false},
		{"data.json", "json", false},
		{"Makefile", "txt", false},
		{"archive.tar.gz", "gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, binary := documentFormat(tt.path)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantBinary, binary)
		})
	}
}

func TestEncodeContent(t *testing.T) {
	content, err := encodeContent([]byte("hi"), true)
	require.NoError(t, err)
	assert.Equal(t, "aGk=", content)

	content, err = encodeContent([]byte("hi"), false)
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	content, err = encodeContent([]byte("caf\xe9"), true)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("caf\xe9")), content)

	_, err = encodeContent([]byte("caf\xe9"), false)
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestResolutionError(t *testing.T) {
	err := &ResolutionError{
		Endpoint:   "http://svc/v1/collections",
		Collection: "manuals",
		Pipeline:   "hybrid",
		StatusCode: http.StatusBadGateway,
		Err:        ErrUnexpectedStatus,
	}
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), `"manuals"`)
	assert.Contains(t, err.Error(), "status 502")

	err.StatusCode = 0
	assert.NotContains(t, err.Error(), "status 502")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil, nil))
	assert.Equal(t, "remote_error", outcome(errors.New("503"), nil))
	assert.Equal(t, "error", outcome(nil, errors.New("bad chunk")))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://svc/v1/collections/abc/search", joinURL("http://svc/v1/collections", "abc", "search"))
	assert.Equal(t, "http://svc/v1", normalizeEndpoint(" http://svc/v1// "))
}
