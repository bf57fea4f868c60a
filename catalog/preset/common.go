// Package preset looks up the built-in catalogs by name.
package preset

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/catalog/preset/kato"
	"nyiyui.ca/hato/kensa/catalog/preset/pikoa"
)

const Default = "pikoa"

var presets = map[string]func() catalog.Catalog{
	"pikoa": pikoa.Catalog,
	"kato":  kato.Catalog,
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := maps.Keys(presets)
	slices.Sort(names)
	return names
}

func Lookup(name string) (catalog.Catalog, error) {
	f, ok := presets[name]
	if !ok {
		return catalog.Catalog{}, fmt.Errorf("unknown catalog %q (known: %v)", name, Names())
	}
	return f(), nil
}
