package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestGetVersionString_DevBuild(t *testing.T) {
	s := GetVersionString()

	assert.True(t, strings.HasPrefix(s, "GizWeb "))
	assert.Contains(t, s, Version)
}

func TestGetDetailedVersionString(t *testing.T) {
	s := GetDetailedVersionString()

	assert.Contains(t, s, "Git commit:")
	assert.Contains(t, s, "Build date:")
	assert.Contains(t, s, "Go version:")
	assert.Contains(t, s, "Platform:")
}
