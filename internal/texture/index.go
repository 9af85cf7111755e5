package texture

import (
	"fmt"
	"path"
	"strings"
)

// Index assigns output paths to bitmap IDs. The first len(names) bitmaps
// are the exported texture pages and keep their names; the rest are plain
// bitmaps numbered from zero.
type Index struct {
	names  []string
	total  int
	format Format
}

// NewIndex builds an index for total bitmaps. names lists the exported
// texture names in table order.
func NewIndex(names []string, total int, f Format) *Index {
	if len(names) > total {
		names = names[:total]
	}
	return &Index{names: names, total: total, format: f}
}

// Path returns the slash-separated output path of bitmap i.
func (idx *Index) Path(i int) string {
	if i < len(idx.names) {
		return path.Join("textures", fmt.Sprintf("t%d_%s%s", i, FileName(idx.names[i]), idx.format.Ext()))
	}
	return path.Join("bitmaps", fmt.Sprintf("bitmap_%d%s", i-len(idx.names), idx.format.Ext()))
}

// IsTexture reports whether bitmap i is a named texture page.
func (idx *Index) IsTexture(i int) bool { return i < len(idx.names) }

// NumTextures returns the number of named texture pages.
func (idx *Index) NumTextures() int { return len(idx.names) }

// Len returns the number of indexed bitmaps.
func (idx *Index) Len() int { return idx.total }

// FileName makes a container name safe to use as a file name.
func FileName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
