// Package catalog reads the game's reference dataset: every recognizable
// entity (characters, weapons, items, tomes, shrines) with its display name,
// static metadata, and icon locator.
//
// The catalog is owned by an external collaborator and loaded once at
// startup from its JSON data files; the pipeline treats it as immutable.
// Beyond lookup by id, the package offers normalized display-name matching,
// which is how OCR output is tied back to entities.
package catalog
