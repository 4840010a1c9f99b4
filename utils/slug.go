package utils

import (
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/studiobook/studiobook/models"
	"gorm.io/gorm"
)

const slugSuffixLength = 4
const slugBytes = "abcdefghijklmnopqrstuvwxyz0123456789"

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers a name into url-safe form: "Yoga & Flow Studio" -> "yoga-flow-studio".
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// GenerateUniqueOrgSlug derives a slug from the org name, appending a short
// random suffix until it is free.
func GenerateUniqueOrgSlug(tx *gorm.DB, name string) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	base := Slugify(name)
	if base == "" {
		base = "org"
	}

	candidate := base
	for {
		var org models.Organization
		err := tx.Where("slug = ?", candidate).First(&org).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return candidate, nil
			}
			return "", err
		}

		b := make([]byte, slugSuffixLength)
		for i := range b {
			b[i] = slugBytes[seededRand.Intn(len(slugBytes))]
		}
		candidate = base + "-" + string(b)
	}
}
