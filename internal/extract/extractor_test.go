package extract

import (
	"testing"

	"github.com/hyperjump/docqa/internal/extract/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages_singlePage(t *testing.T) {
	e := NewExtractor()
	pages, err := e.Pages(pdftest.Build("The capital of France is Paris."))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "The capital of France is Paris.")
}

func TestPages_multiPage(t *testing.T) {
	e := NewExtractor()
	pages, err := e.Pages(pdftest.Build("Section 302 punishment for murder", "Section 304 culpable homicide"))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "Section 302")
	assert.Contains(t, pages[1], "Section 304")
}

func TestPages_corrupt(t *testing.T) {
	e := NewExtractor()
	_, err := e.Pages([]byte("this is not a pdf"))
	assert.Error(t, err)

	truncated := pdftest.Build("hello")[:40]
	_, err = e.Pages(truncated)
	assert.Error(t, err)
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name, mime string
		want       bool
	}{
		{"a.pdf", "", true},
		{"A.PDF", "", true},
		{"a.txt", "", false},
		{"upload", "application/pdf", true},
		{"upload", "application/pdf; charset=binary", true},
		{"a.pdf", "text/plain", false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.name, tt.mime); got != tt.want {
			t.Errorf("IsPDF(%q, %q) = %v, want %v", tt.name, tt.mime, got, tt.want)
		}
	}
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "one\ntwo", JoinPages([]string{"one", "two"}))
	assert.Equal(t, "", JoinPages(nil))
}
