package workflow

import "github.com/yigit/mobility/internal/app/models"

// Badge is the display label and color token of a status
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// BadgeSet maps every status to its badge. Deployments can swap the whole set.
type BadgeSet map[models.ApplicationStatus]Badge

// FrenchBadges is the default label set
var FrenchBadges = BadgeSet{
	models.StatusDraft:          {Label: "Brouillon", Color: "gray"},
	models.StatusSubmitted:      {Label: "Soumis", Color: "blue"},
	models.StatusRevision:       {Label: "En révision", Color: "yellow"},
	models.StatusValidatedMajor: {Label: "Validé par le responsable", Color: "purple"},
	models.StatusValidatedFinal: {Label: "Validé (final)", Color: "green"},
	models.StatusRejected:       {Label: "Refusé", Color: "red"},
}

// For returns the badge of status, falling back to the raw value
func (b BadgeSet) For(status models.ApplicationStatus) Badge {
	if badge, ok := b[status]; ok {
		return badge
	}
	return Badge{Label: string(status), Color: "gray"}
}

// Merge returns a copy of b with overrides applied on top
func (b BadgeSet) Merge(overrides map[string]Badge) BadgeSet {
	out := make(BadgeSet, len(b))
	for k, v := range b {
		out[k] = v
	}
	for raw, badge := range overrides {
		status := models.ApplicationStatus(raw)
		if !status.Valid() {
			continue
		}
		current := out[status]
		if badge.Label != "" {
			current.Label = badge.Label
		}
		if badge.Color != "" {
			current.Color = badge.Color
		}
		out[status] = current
	}
	return out
}
