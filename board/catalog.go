package board

// Catalog of visual templates shared between server and clients. The server
// assigns model kinds cyclically from this palette; clients map a kind to a
// model and tint it with the matching color.
var CatalogColors = []string{
	"#D4A29C",
	"#E8B298",
	"#FDE8B3",
	"#BDE1B3",
	"#B0E1E3",
	"#97ADF6",
	"#C6A0D4",
}

// CatalogSize is the number of model kinds available.
func CatalogSize() int { return len(CatalogColors) }

// ColorFor returns the catalog color for a model kind, wrapping out-of-range
// kinds back into the palette.
func ColorFor(kind int) string {
	if kind < 0 {
		kind = 0
	}
	return CatalogColors[kind%len(CatalogColors)]
}
