package utils

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile("[^a-z0-9]+")

func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DocumentFileName builds "<prefix>-<slug>.<ext>", dropping the slug when it is empty
func DocumentFileName(prefix, subject, ext string) string {
	name := Slugify(prefix)
	if slug := Slugify(subject); slug != "" {
		name += "-" + slug
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
