package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7 rest of file")))
	assert.False(t, IsPDF([]byte("PK\x03\x04 a zip file")))
	assert.False(t, IsPDF([]byte("plain text")))
	assert.False(t, IsPDF(nil))
}

func TestExtractTextFromBytesRejectsEmptyInput(t *testing.T) {
	parser := NewPDFParserService()

	_, err := parser.ExtractTextFromBytes(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestExtractTextFromBytesRejectsNonPDF(t *testing.T) {
	parser := NewPDFParserService()

	_, err := parser.ExtractTextFromBytes([]byte("this is a plain text resume"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestExtractTextFromBytesRejectsTruncatedPDF(t *testing.T) {
	parser := NewPDFParserService()

	// Correct magic header but no document body
	_, err := parser.ExtractTextFromBytes([]byte("%PDF-1.4\n"))

	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses blank lines", "a\n\n\nb", "a\nb"},
		{"trims line whitespace", "  a  \n  b  ", "a\nb"},
		{"empty input", "   \n  \n", ""},
		{"single line", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCandidateNameFromFile(t *testing.T) {
	assert.Equal(t, "jane_doe", candidateNameFromFile("jane_doe.pdf"))
	assert.Equal(t, "resume", candidateNameFromFile("/tmp/uploads/resume.pdf"))
	assert.Equal(t, "no_extension", candidateNameFromFile("no_extension"))
}
