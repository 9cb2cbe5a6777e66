package photo

import (
	"regexp"
	"strings"

	"github.com/jb-miles/castscout/internal/util"
)

var (
	// legacy form: .../person.rme/perfid=zakspears/gender=m/zak-spears.htm
	legacyForm = regexp.MustCompile(`perfid=([^/?#]+)`)
	legacySlug = regexp.MustCompile(`/([^/?#]+)\.htm(?:$|[?#])`)

	// newer form: .../person.rme/id=<opaque>/<slug>
	opaqueForm = regexp.MustCompile(`/id=([0-9a-zA-Z-]+)/([^/?#]+)`)
)

// ResolveKey derives the stable identity key for a performer. The same
// performer must map to the same key on every run, so derivation is driven
// purely by URL shape, falling back to a slug of the display name.
// The canonical-URL hint from the profile page takes precedence over the
// navigated URL because search links sometimes point at redirect stubs.
func ResolveKey(profileURL, canonicalURL, displayName string) string {
	for _, u := range []string{canonicalURL, profileURL} {
		if key := keyFromURL(u); key != "" {
			return key
		}
	}
	return util.Slugify(displayName)
}

func keyFromURL(u string) string {
	if u == "" {
		return ""
	}
	if m := legacyForm.FindStringSubmatch(u); m != nil {
		id := m[1]
		if s := legacySlug.FindStringSubmatch(u); s != nil {
			return id + "#" + strings.ToLower(s[1])
		}
		return id
	}
	if m := opaqueForm.FindStringSubmatch(u); m != nil {
		slug := strings.ToLower(strings.TrimSuffix(m[2], ".htm"))
		return m[1] + "#" + slug
	}
	return ""
}
