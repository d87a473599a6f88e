package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bonktools/build-detect/pkg/types"
)

// Entity is one immutable catalog record. The catalog is owned by the
// external reference-data collaborator; this package only reads it.
type Entity struct {
	// ID is the stable identifier used throughout the pipeline.
	ID string `json:"id"`

	// Name is the display name shown in-game and on the wiki.
	Name string `json:"name"`

	// Category is the entity's catalog category.
	Category types.Category `json:"category"`

	// Tier and Rarity are static metadata carried through for the
	// presentation layer; the pipeline does not interpret them.
	Tier   string `json:"tier,omitempty"`
	Rarity string `json:"rarity,omitempty"`

	// Image is the icon locator, relative to the catalog directory
	// (e.g. "images/items/gym_sauce.png").
	Image string `json:"image"`
}

// Catalog is the read-only set of entities the pipeline can recognize,
// loaded once at startup.
type Catalog struct {
	dir      string
	entities []Entity
	byID     map[string]*Entity
	byName   map[string]*Entity
}

// categoryFiles maps each category to its data file and top-level list key,
// matching the guide's data layout (data/items.json -> {"items": [...]}).
var categoryFiles = []struct {
	category types.Category
	file     string
	key      string
}{
	{types.CategoryCharacter, "characters.json", "characters"},
	{types.CategoryWeapon, "weapons.json", "weapons"},
	{types.CategoryItem, "items.json", "items"},
	{types.CategoryTome, "tomes.json", "tomes"},
	{types.CategoryShrine, "shrines.json", "shrines"},
}

// LoadDir reads every category data file under dir and returns the combined
// catalog. Missing category files are skipped (not every deployment ships
// shrine data); a malformed file is an error.
//
// Entity ids default to the icon filename stem when the data file omits
// them, mirroring how the catalog's own tooling derives ids.
func LoadDir(dir string) (*Catalog, error) {
	c := &Catalog{
		dir:    dir,
		byID:   make(map[string]*Entity),
		byName: make(map[string]*Entity),
	}

	for _, cf := range categoryFiles {
		path := filepath.Join(dir, cf.file)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", cf.file, err)
		}

		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", cf.file, err)
		}

		raw, ok := doc[cf.key]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q list", cf.file, cf.key)
		}

		var entities []Entity
		if err := json.Unmarshal(raw, &entities); err != nil {
			return nil, fmt.Errorf("failed to parse %s entries: %w", cf.file, err)
		}

		for i := range entities {
			e := &entities[i]
			e.Category = cf.category
			if e.ID == "" {
				e.ID = idFromImage(e.Image)
			}
			if e.ID == "" || e.Name == "" {
				return nil, fmt.Errorf("%s: entry %d has no id or name", cf.file, i)
			}
		}
		c.entities = append(c.entities, entities...)
	}

	sort.Slice(c.entities, func(i, j int) bool {
		return c.entities[i].ID < c.entities[j].ID
	})

	for i := range c.entities {
		e := &c.entities[i]
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entity id %q", e.ID)
		}
		c.byID[e.ID] = e
		c.byName[NormalizeName(e.Name)] = e
	}

	return c, nil
}

// Entities returns every catalog entity, ordered by id.
func (c *Catalog) Entities() []Entity {
	return c.entities
}

// Len returns the number of catalog entities.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// Get returns the entity with the given id, or false if the catalog has no
// such entry.
func (c *Catalog) Get(id string) (Entity, bool) {
	e, ok := c.byID[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// IconPath resolves an entity's icon locator to an absolute path under the
// catalog directory.
func (c *Catalog) IconPath(e Entity) string {
	return filepath.Join(c.dir, e.Image)
}

// MatchName looks up an entity whose display name matches the recognized
// text after normalization. Exact normalized matches only; fuzzy matching of
// partial OCR output is the fusion engine's concern, not the catalog's.
func (c *Catalog) MatchName(text string) (Entity, bool) {
	e, ok := c.byName[NormalizeName(text)]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// NormalizeName lowercases a display name and strips everything but letters
// and digits, so "Gym Sauce" and "gym_sauce" compare equal. OCR output is
// normalized the same way before lookup.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// idFromImage derives an entity id from an icon path: the filename without
// its extension ("images/items/gym_sauce.png" -> "gym_sauce").
func idFromImage(image string) string {
	if image == "" {
		return ""
	}
	base := filepath.Base(image)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
