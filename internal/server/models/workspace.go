package models

// DefaultWorkspaceColor is assigned to workspaces created without a color.
const DefaultWorkspaceColor = "#38bdf8"

type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	OwnerID   string `json:"ownerId"`
	PackageID string `json:"packageId"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Package is a billing plan. A nil limit means unlimited.
type Package struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PriceMonthly    float64 `json:"priceMonthly"`
	PriceAnnual     float64 `json:"priceAnnual"`
	FormLimit       *int    `json:"formLimit"`
	SubmissionLimit *int    `json:"submissionLimit"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func (p Package) Clone() Package {
	out := p
	if p.FormLimit != nil {
		v := *p.FormLimit
		out.FormLimit = &v
	}
	if p.SubmissionLimit != nil {
		v := *p.SubmissionLimit
		out.SubmissionLimit = &v
	}
	return out
}
