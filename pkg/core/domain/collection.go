package domain

import (
	"regexp"
	"time"
)

var collectionIDPattern = regexp.MustCompile(`(?i)^[a-z0-9_-]+$`)

// Collection is a named, ordered grouping of link slugs. Projects may reference
// slugs that no longer exist; those are dropped when the collection is rendered.
type Collection struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Projects    []string   `json:"projects"`
	Tags        []string   `json:"tags"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// CollectionView is a collection with its projects resolved to links.
type CollectionView struct {
	Collection
	Links []Link `json:"links"`
}

// CollectionPatch is a partial collection update.
type CollectionPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Projects    *[]string `json:"projects,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

func ValidateCollectionID(id string) error {
	if !collectionIDPattern.MatchString(id) {
		return ErrValidation
	}
	return nil
}

// ToHash encodes the collection for the collection:<id> hash.
func (c Collection) ToHash() map[string]string {
	h := map[string]string{
		"name":        c.Name,
		"description": c.Description,
		"projects":    JoinTags(c.Projects),
		"tags":        JoinTags(c.Tags),
	}
	if c.CreatedAt != nil {
		h["createdAt"] = c.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if c.UpdatedAt != nil {
		h["updatedAt"] = c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return h
}

func CollectionFromHash(id string, h map[string]string) Collection {
	return Collection{
		ID:          id,
		Name:        h["name"],
		Description: h["description"],
		Projects:    SplitTags(h["projects"]),
		Tags:        SplitTags(h["tags"]),
		CreatedAt:   parseTime(h["createdAt"]),
		UpdatedAt:   parseTime(h["updatedAt"]),
	}
}
