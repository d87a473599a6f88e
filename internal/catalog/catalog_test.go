package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonktools/build-detect/pkg/types"
)

// writeCatalog writes category data files into a temp directory and returns
// its path.
func writeCatalog(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json": `{"items": [
			{"id": "gym_sauce", "name": "Gym Sauce", "tier": "A", "rarity": "rare", "image": "images/items/gym_sauce.png"},
			{"name": "Anvil", "image": "images/items/anvil.png"}
		]}`,
		"characters.json": `{"characters": [
			{"id": "bonker", "name": "Bonker", "image": "images/characters/bonker.png"}
		]}`,
	})

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())

	e, ok := cat.Get("gym_sauce")
	require.True(t, ok)
	assert.Equal(t, "Gym Sauce", e.Name)
	assert.Equal(t, types.CategoryItem, e.Category)
	assert.Equal(t, "rare", e.Rarity)

	// Id derived from the icon filename when the data file omits it.
	e, ok = cat.Get("anvil")
	require.True(t, ok)
	assert.Equal(t, "Anvil", e.Name)

	e, ok = cat.Get("bonker")
	require.True(t, ok)
	assert.Equal(t, types.CategoryCharacter, e.Category)

	_, ok = cat.Get("missing")
	assert.False(t, ok)
}

func TestLoadDirEntitiesSortedByID(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json": `{"items": [
			{"id": "zeta", "name": "Zeta", "image": "z.png"},
			{"id": "alpha", "name": "Alpha", "image": "a.png"}
		]}`,
	})

	cat, err := LoadDir(dir)
	require.NoError(t, err)

	entities := cat.Entities()
	require.Len(t, entities, 2)
	assert.Equal(t, "alpha", entities[0].ID)
	assert.Equal(t, "zeta", entities[1].ID)
}

func TestLoadDirMissingCategoryFilesSkipped(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"weapons.json": `{"weapons": [{"id": "slingshot", "name": "Slingshot", "image": "s.png"}]}`,
	})

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoadDirDuplicateID(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json":  `{"items": [{"id": "dup", "name": "One", "image": "a.png"}]}`,
		"tomes.json":  `{"tomes": [{"id": "dup", "name": "Two", "image": "b.png"}]}`,
	})

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDirMalformed(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json": `not json`,
	})

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestMatchName(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json": `{"items": [{"id": "gym_sauce", "name": "Gym Sauce", "image": "g.png"}]}`,
	})

	cat, err := LoadDir(dir)
	require.NoError(t, err)

	for _, text := range []string{"Gym Sauce", "gym sauce", "GYM_SAUCE", "GymSauce"} {
		e, ok := cat.MatchName(text)
		assert.True(t, ok, "expected %q to match", text)
		assert.Equal(t, "gym_sauce", e.ID)
	}

	_, ok := cat.MatchName("Gym")
	assert.False(t, ok, "partial names must not match")
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "gymsauce", NormalizeName("Gym Sauce"))
	assert.Equal(t, "gymsauce", NormalizeName("gym_sauce"))
	assert.Equal(t, "tome2", NormalizeName("Tome #2!"))
	assert.Equal(t, "", NormalizeName("  --  "))
}

func TestIconPath(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"items.json": `{"items": [{"id": "anvil", "name": "Anvil", "image": "images/items/anvil.png"}]}`,
	})

	cat, err := LoadDir(dir)
	require.NoError(t, err)

	e, _ := cat.Get("anvil")
	assert.Equal(t, filepath.Join(dir, "images", "items", "anvil.png"), cat.IconPath(e))
}
