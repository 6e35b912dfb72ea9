package domain

import "time"

// Hash field names used by the meta:<slug> hash.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldPermanent   = "permanent"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
	FieldGithubRepo  = "githubRepo"
)

// ToHash encodes metadata into string fields. Empty optional fields are omitted.
func (m Metadata) ToHash() map[string]string {
	h := map[string]string{
		FieldPermanent: "0",
	}
	if m.Permanent {
		h[FieldPermanent] = "1"
	}
	if m.CreatedAt != nil {
		h[FieldCreatedAt] = m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if m.UpdatedAt != nil {
		h[FieldUpdatedAt] = m.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	optional := map[string]string{
		FieldTitle:       m.Title,
		FieldDescription: m.Description,
		FieldTags:        JoinTags(m.Tags),
		FieldStartDate:   m.StartDate,
		FieldEndDate:     m.EndDate,
		FieldGithubRepo:  m.GithubRepo,
	}
	for k, v := range optional {
		if v != "" {
			h[k] = v
		}
	}
	return h
}

// MetadataFromHash decodes a meta hash. Unparseable timestamps are dropped.
func MetadataFromHash(h map[string]string) Metadata {
	return Metadata{
		Title:       h[FieldTitle],
		Description: h[FieldDescription],
		Tags:        SplitTags(h[FieldTags]),
		Permanent:   h[FieldPermanent] == "1",
		CreatedAt:   parseTime(h[FieldCreatedAt]),
		UpdatedAt:   parseTime(h[FieldUpdatedAt]),
		StartDate:   h[FieldStartDate],
		EndDate:     h[FieldEndDate],
		GithubRepo:  h[FieldGithubRepo],
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// MetadataPatch carries a partial metadata update. Nil fields are left alone.
type MetadataPatch struct {
	Target      *string   `json:"target,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Permanent   *bool     `json:"permanent,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	GithubRepo  *string   `json:"githubRepo,omitempty"`
}

// Apply copies the non-nil fields of p onto m.
func (p MetadataPatch) Apply(m *Metadata) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Tags != nil {
		m.Tags = UnionTags(nil, *p.Tags)
	}
	if p.Permanent != nil {
		m.Permanent = *p.Permanent
	}
	if p.StartDate != nil {
		m.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		m.EndDate = *p.EndDate
	}
	if p.GithubRepo != nil {
		m.GithubRepo = *p.GithubRepo
	}
}
