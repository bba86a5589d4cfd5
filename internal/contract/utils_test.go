package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []struct {
		rate     float64
		expected string
	}{
		{0.5, "Explosive"},
		{0.15, "Fast"},
		{0.07, "Moderate"},
		{0.01, "Slow"},
		{-0.2, "Slow"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetColorLabel(tt.rate))
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2020-03-08 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 8, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/08/2020")
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"Alaska", "Hawaii"}, ParseList("Alaska, Hawaii"))
	assert.Equal(t, []string{"New York"}, ParseList(" ,New York,, "))
	assert.Nil(t, ParseList(""))
}

func TestContainsFold(t *testing.T) {
	list := []string{"Alaska", "New York"}
	assert.True(t, ContainsFold(list, "alaska"))
	assert.True(t, ContainsFold(list, "NEW YORK"))
	assert.False(t, ContainsFold(list, "York"))
	assert.False(t, ContainsFold(nil, "Alaska"))
}

func TestNormalizeFIPS(t *testing.T) {
	tests := []struct {
		input       string
		expected    string
		expectError bool
	}{
		{"1001", "01001", false},
		{"01001", "01001", false},
		{"53033.0", "53033", false},
		{" 6037 ", "06037", false},
		{"", "", false},
		{"123456", "", true},
		{"12a45", "", true},
		{".0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeFIPS(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "Kings", TruncateName("Kings", 10))
	assert.Equal(t, "San Ber...", TruncateName("San Bernardino", 10))
	assert.Equal(t, "Essex", TruncateName("Essex", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestDBFilePaths(t *testing.T) {
	assert.Contains(t, GetCacheDBFilePath(), ".epigrowth_cache.db")
	assert.Contains(t, GetAnalysisDBFilePath(), ".epigrowth_analysis.db")
	assert.NotEqual(t, GetCacheDBFilePath(), GetAnalysisDBFilePath())
}
