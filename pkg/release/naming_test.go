package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	tests := map[string]bool{
		"1.2.3":       true,
		"1.2.3.":      false,
		"":            false,
		"1 2.3":       false,
		"1-2.3":       false,
		"1_2.3":       false,
		"abc.cde.efg": true,
		"abc.":        false,
		"abc..":       false,
		"abc..efg":    false,
		".":           false,
		"abc":         false,
		".abc.def":    false,
		"com.Foomo.2": true,
		"ä.b":         false,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, ValidName(name), "name %q", name)
	}
}

func TestValidFilename(t *testing.T) {
	assert.True(t, ValidFilename("app-linux-amd64.tar.gz"))
	assert.False(t, ValidFilename(""))
	assert.False(t, ValidFilename("."))
	assert.False(t, ValidFilename(".."))
	assert.False(t, ValidFilename("../etc/passwd"))
	assert.False(t, ValidFilename(`dir\file`))
}

func TestValidVersion(t *testing.T) {
	assert.True(t, ValidVersion("1.0.0"))
	assert.True(t, ValidVersion("v2"))
	assert.True(t, ValidVersion("1.0.0-rc.1+build.5"))
	assert.False(t, ValidVersion(""))
	assert.False(t, ValidVersion("."))
	assert.False(t, ValidVersion(".."))
	assert.False(t, ValidVersion("1/2"))
	assert.False(t, ValidVersion(`1\2`))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(2), TotalPages(10, 10))
	assert.Equal(t, int64(1), TotalPages(0, 5))
	assert.Equal(t, int64(2), TotalPages(11, 10))
	assert.Equal(t, int64(1), TotalPages(9, 10))
}

func TestValidatorRejectsMalformedRelease(t *testing.T) {
	v := NewValidator()
	require.Error(t, v.Struct(&Release{Name: "abc", Version: "1"}))
	require.Error(t, v.Struct(&Release{Name: "abc.def"}))
}
