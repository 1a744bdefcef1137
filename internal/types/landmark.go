package types

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultLanguage is the fallback locale for every localized field.
const DefaultLanguage = "ar"

// SupportedLanguages is the fixed set of display languages.
var SupportedLanguages = []string{"ar", "en", "fr", "es"}

// IsSupportedLanguage reports whether code is one of the enumerated
// display languages.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// LocalizedText maps a language code to a display string. At least the
// "ar" entry is expected to be present.
type LocalizedText map[string]string

// ResolveLocalized returns the text for lang, falling back to
// fallbackLang and finally to the empty string.
func ResolveLocalized(m LocalizedText, lang, fallbackLang string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[lang]; ok && s != "" {
		return s
	}
	return m[fallbackLang]
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Landmark is a single guided site. IDs are zero-padded numeric strings
// ("001", "002", ...) assigned at creation time.
type Landmark struct {
	ID              string        `json:"id" example:"001"`
	Name            LocalizedText `json:"name"`
	Location        Location      `json:"location"`
	Description     LocalizedText `json:"description"`
	Recommendations []string      `json:"recommendations"`
	Visits          int           `json:"visits"`
}

// Collection is the full landmark set plus its last sync timestamp.
type Collection struct {
	Landmarks   []Landmark `json:"landmarks"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// Find returns the landmark with the given id, or nil.
func (c *Collection) Find(id string) *Landmark {
	for i := range c.Landmarks {
		if c.Landmarks[i].ID == id {
			return &c.Landmarks[i]
		}
	}
	return nil
}

// NextID computes the identifier for a new landmark: max of the numeric
// ids plus one, zero-padded to three digits. Unparseable ids count as 0.
// This mirrors the allocator of the admin panel and is NOT a uniqueness
// guarantee across concurrent sessions.
func (c *Collection) NextID() string {
	maxID := 0
	for _, lm := range c.Landmarks {
		n, err := strconv.Atoi(lm.ID)
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("%03d", maxID+1)
}

// Memory is a visitor photo attached to a landmark. The image is kept
// inline as a data URI, matching the upload format of the widget.
type Memory struct {
	ID          string    `json:"id"`
	LandmarkID  string    `json:"landmarkId"`
	ImageData   string    `json:"src"`
	VisitorName string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Tier identifies which data source ended up authoritative for a session.
type Tier string

const (
	TierRemote     Tier = "remote"
	TierLocalCache Tier = "local_cache"
	TierBundled    Tier = "bundled"
	TierBootstrap  Tier = "bootstrap"
)

// SaveOutcome reports which tiers carried an admin mutation.
type SaveOutcome string

const (
	OutcomeRemoteAndLocal SaveOutcome = "remote_and_local"
	OutcomeLocalOnly      SaveOutcome = "local_only"
)
