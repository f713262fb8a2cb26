package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := map[string]bool{
		"https://cdn.example.com":         true,
		"http://localhost:9000/releases":  true,
		"":                                false,
		"bogus":                           false,
		"htt:/notaurl":                    false,
		"htts://notaurl":                  false,
		"/path/segment/only":              false,
		"s3://bucket":                     false,
		"https://":                        false,
		"http://[::1]:namedport/releases": false,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, IsValidURL(in), in)
	}
}
