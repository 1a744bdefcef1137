package landmark

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

// UpsertLandmarkRequest is the admin panel create/update payload.
type UpsertLandmarkRequest struct {
	Name            types.LocalizedText `json:"name"`
	Location        types.Location      `json:"location"`
	Description     types.LocalizedText `json:"description"`
	Recommendations []string            `json:"recommendations"`
}

// Validate enforces the payload rules: an Arabic name is mandatory,
// coordinates must be on the globe.
func (r UpsertLandmarkRequest) Validate() error {
	return validation.Errors{
		"name.ar": validation.Validate(r.Name["ar"], validation.Required),
		"location.lat": validation.Validate(r.Location.Lat,
			validation.Min(-90.0), validation.Max(90.0)),
		"location.lng": validation.Validate(r.Location.Lng,
			validation.Min(-180.0), validation.Max(180.0)),
	}.Filter()
}

// Landmark converts the payload into a domain record with the given id.
func (r UpsertLandmarkRequest) Landmark(id string) types.Landmark {
	return types.Landmark{
		ID:              id,
		Name:            r.Name,
		Location:        r.Location,
		Description:     r.Description,
		Recommendations: r.Recommendations,
	}
}

// SaveLandmarkResponse reports the stored record and which tier carried
// the write, for the admin panel notification.
type SaveLandmarkResponse struct {
	Landmark types.Landmark    `json:"landmark"`
	Outcome  types.SaveOutcome `json:"outcome"`
}

// VisitResponse is the scan/selection acknowledgement.
type VisitResponse struct {
	LandmarkID  string `json:"landmarkId"`
	Visits      int    `json:"visits"`
	ChatEnabled bool   `json:"chatEnabled"`
}
