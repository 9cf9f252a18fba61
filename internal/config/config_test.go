package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eesi/internal/interval"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadErrorOnlyParsesNewlineSeparatedNames(t *testing.T) {
	path := writeFile(t, "error_only.txt", "malloc\nkzalloc\n\nkmem_cache_alloc\n")

	set, err := ReadErrorOnly(path)

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"malloc": true, "kzalloc": true, "kmem_cache_alloc": true}, set)
}

func TestReadErrorOnlyMissingFile(t *testing.T) {
	_, err := ReadErrorOnly(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	assert.Error(t, err)
}

func TestReadSpecsParsesLabeledLines(t *testing.T) {
	path := writeFile(t, "specs.txt", "spec f <0\nspec g top\nspec h !=0\n")

	specs, err := ReadSpecs(path)

	require.NoError(t, err)
	assert.Equal(t, interval.Ltz, specs["f"].Interval)
	assert.Equal(t, interval.Top, specs["g"].Interval)
	assert.Equal(t, interval.Ntz, specs["h"].Interval)
}

func TestReadSpecsRejectsTooFewFields(t *testing.T) {
	path := writeFile(t, "specs.txt", "spec f\n")

	_, err := ReadSpecs(path)

	assert.Error(t, err)
}

func TestReadSpecsRejectsUnrecognizedToken(t *testing.T) {
	path := writeFile(t, "specs.txt", "spec f <00\n")

	_, err := ReadSpecs(path)

	assert.Error(t, err)
}

func TestReadSeedSpecsParsesTwoFieldLines(t *testing.T) {
	path := writeFile(t, "seed_specs.txt", "f <0\ng top\nh !=0\n")

	specs, err := ReadSeedSpecs(path)

	require.NoError(t, err)
	assert.Equal(t, interval.Ltz, specs["f"].Interval)
	assert.Equal(t, interval.Top, specs["g"].Interval)
	assert.Equal(t, interval.Ntz, specs["h"].Interval)
}

func TestReadSeedSpecsRejectsTooFewFields(t *testing.T) {
	path := writeFile(t, "seed_specs.txt", "f\n")

	_, err := ReadSeedSpecs(path)

	assert.Error(t, err)
}

func TestDefaultErrorCodesSpansNegatedErrnoRange(t *testing.T) {
	codes := DefaultErrorCodes()

	assert.True(t, codes[-1])
	assert.True(t, codes[-133])
	assert.False(t, codes[-134])
	assert.False(t, codes[0])
	assert.False(t, codes[1])
}
