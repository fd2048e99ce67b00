package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceFile(t *testing.T) {
	t.Parallel()

	file, err := NewSourceFile("notes/Lecture.HTML", "Text/HTML; charset=utf-8", []byte("<p>hi</p>"))
	require.NoError(t, err)

	assert.Equal(t, "text/html", file.ContentType)
	assert.Equal(t, int64(9), file.Size)
	assert.Equal(t, ".html", file.Extension())
	assert.Equal(t, "Lecture.HTML", file.BaseName())
	assert.Equal(t, "<p>hi</p>", file.Text())
}

func TestNewSourceFile_EmptyName(t *testing.T) {
	t.Parallel()

	_, err := NewSourceFile("  ", "text/plain", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrEmptyFileName))
}

func TestTextChunkValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		chunk   TextChunk
		wantErr bool
	}{
		{"valid", TextChunk{Index: 0, Text: "Hello."}, false},
		{"negative index", TextChunk{Index: -1, Text: "Hello."}, true},
		{"blank payload", TextChunk{Index: 2, Text: " \n\t"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.chunk.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChunk)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
