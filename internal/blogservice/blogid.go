package blogservice

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	nonAlphanumericRX = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespaceRX      = regexp.MustCompile(`\s+`)
)

// slugify lowercases title and turns every run of non-alphanumerics into a single hyphen.
func slugify(title string) string {
	s := nonAlphanumericRX.ReplaceAllString(title, " ")
	s = whitespaceRX.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.ToLower(strings.Trim(s, "-"))
}

// newBlogID builds the public blog id: the title slug followed by a random suffix.
func newBlogID(title string, suffix func() (string, error)) (string, error) {
	id, err := suffix()
	if err != nil {
		return "", err
	}

	slug := slugify(title)
	if slug == "" {
		return id, nil
	}

	return slug + "-" + id, nil
}

func defaultBlogIDSuffix() (string, error) {
	return gonanoid.New()
}
