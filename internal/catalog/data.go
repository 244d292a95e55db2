package catalog

import "github.com/oryclothing/ory-backend/pkg/enums"

var allSizes = []enums.ProductSize{
	enums.SizeS,
	enums.SizeM,
	enums.SizeL,
	enums.SizeXL,
}

var products = []Product{
	{
		ID:          "stealth",
		Name:        "Ory Stealth",
		Price:       85,
		Description: "Black Obsidian Silk",
		Image:       "/products/stealth/main.jpg",
		Sizes:       allSizes,
	},
	{
		ID:          "carbon",
		Name:        "Ory Carbon",
		Price:       95,
		Description: "Matte Grey Fusion",
		Image:       "/products/carbon/main.jpg",
		Sizes:       allSizes,
	},
	{
		ID:          "ice",
		Name:        "Ory Ice",
		Price:       85,
		Description: "Cold Silver Weave",
		Image:       "/products/ice/main.jpg",
		Sizes:       allSizes,
	},
	{
		ID:          "midnight",
		Name:        "Ory Midnight",
		Price:       110,
		Description: "Royal Deep Blue",
		Image:       "/products/midnight/main.jpg",
		Sizes:       allSizes,
	},
}

// Launch stock per product and size, applied once on first boot.
var initialStock = map[string]map[enums.ProductSize]int{
	"stealth":  {enums.SizeS: 50, enums.SizeM: 100, enums.SizeL: 80, enums.SizeXL: 40},
	"carbon":   {enums.SizeS: 30, enums.SizeM: 60, enums.SizeL: 50, enums.SizeXL: 25},
	"ice":      {enums.SizeS: 45, enums.SizeM: 90, enums.SizeL: 70, enums.SizeXL: 35},
	"midnight": {enums.SizeS: 20, enums.SizeM: 40, enums.SizeL: 30, enums.SizeXL: 15},
}
