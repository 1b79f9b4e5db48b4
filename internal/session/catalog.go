package session

import "slices"

// Model types that accept reference images.
const (
	TypeReferenceToImage = "R2I"
	TypeMagicEdit        = "GEM_PIX"
)

// AspectRatios lists the selectable ratios; the session stores an index into it.
var AspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// AspectRatioAt returns the ratio at i, or "1:1" when i is out of range.
func AspectRatioAt(i int) string {
	if i < 0 || i >= len(AspectRatios) {
		return AspectRatios[0]
	}
	return AspectRatios[i]
}

// Catalog is the ordered list of generation models.
type Catalog struct {
	names []string
	types map[string]string
}

// DefaultCatalog is used until the server provides its own.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]string{
			"Texto a Imagen (v3.1)",
			"Texto a Imagen Ultra (v3.5)",
			"Imagen desde Referencia (V3.5)",
			"Edición Mágica (Nano)",
		},
		map[string]string{
			"Texto a Imagen (v3.1)":          "IMAGEN_3_1",
			"Texto a Imagen Ultra (v3.5)":    "IMAGEN_3_5",
			"Imagen desde Referencia (V3.5)": TypeReferenceToImage,
			"Edición Mágica (Nano)":          TypeMagicEdit,
		},
	)
}

// NewCatalog builds a catalog from the tab order and the name-to-type map.
func NewCatalog(names []string, types map[string]string) *Catalog {
	c := &Catalog{
		names: slices.Clone(names),
		types: make(map[string]string, len(types)),
	}
	for k, v := range types {
		c.types[k] = v
	}
	return c
}

// Names returns the display names in tab order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether name is a known model.
func (c *Catalog) Contains(name string) bool {
	return slices.Contains(c.names, name)
}

// Index returns the tab position of name, or -1.
func (c *Catalog) Index(name string) int {
	return slices.Index(c.names, name)
}

// At returns the model at tab position i, or "" when out of range.
func (c *Catalog) At(i int) string {
	if i < 0 || i >= len(c.names) {
		return ""
	}
	return c.names[i]
}

// Type returns the backend model type for a display name.
func (c *Catalog) Type(name string) string {
	return c.types[name]
}

// AcceptsReferences reports whether the model consumes reference images.
func (c *Catalog) AcceptsReferences(name string) bool {
	t := c.types[name]
	return t == TypeReferenceToImage || t == TypeMagicEdit
}

// RequiresReference reports whether generation needs at least one reference.
// GEM_PIX falls back to a blank canvas on the server, R2I does not.
func (c *Catalog) RequiresReference(name string) bool {
	return c.types[name] == TypeReferenceToImage
}

// ReferenceTargets returns the models a generated image can be sent to as a
// reference, in tab order.
func (c *Catalog) ReferenceTargets() []string {
	var out []string
	for _, n := range c.names {
		if c.AcceptsReferences(n) {
			out = append(out, n)
		}
	}
	return out
}

// Cycle returns the model delta tabs away from name, wrapping around.
func (c *Catalog) Cycle(name string, delta int) string {
	if len(c.names) == 0 {
		return ""
	}
	i := c.Index(name)
	if i < 0 {
		return c.names[0]
	}
	n := len(c.names)
	return c.names[((i+delta)%n+n)%n]
}
