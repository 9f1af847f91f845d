package catalog

import (
	"regexp"
	"strings"
)

const PlaceholderImage = "/placeholder.svg"

var dessertImages = map[string]string{
	"basundi":          "/images/basundi.png",
	"kaddu-ki-kheer":   "/images/kaddu-ki-kheer.png",
	"kaddu-ka-kheer":   "/images/kaddu-ki-kheer.png",
	"double-ka-meetha": "/images/double-ka-meetha.png",
	// legacy keys
	"khaddukakheer": "/images/kaddu-ki-kheer.png",
	"kaddukhakheer": "/images/kaddu-ki-kheer.png",
	"double-kameta": "/images/double-ka-meetha.png",
	"doublekameeta": "/images/double-ka-meetha.png",
}

var whitespace = regexp.MustCompile(`\s+`)

// ImagePath resolves a dessert's image_url to a displayable path. Absolute
// URLs and rooted paths pass through; known keys map to bundled images, after
// lowercasing and turning whitespace runs into "-"; anything else gets the
// placeholder.
func ImagePath(key string) string {
	if key == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "/") {
		return key
	}
	if p, ok := dessertImages[key]; ok {
		return p
	}
	normalized := whitespace.ReplaceAllString(strings.ToLower(key), "-")
	if p, ok := dessertImages[normalized]; ok {
		return p
	}
	return PlaceholderImage
}
