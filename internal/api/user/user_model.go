package user

import "time"

// UserProfile is the public view of a user. Credential fields are never part
// of this shape, so there is nothing to strip at serialization time.
type UserProfile struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Bio            *string       `json:"bio,omitempty"`
	Location       *string       `json:"location,omitempty"`
	ProfilePicture *string       `json:"profilePicture,omitempty"`
	YoutubeLinks   []YoutubeLink `json:"youtubeLinks"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// YoutubeLink is one embedded video attachment on a profile. The slice lives
// in a single JSONB column, mirroring the persisted layout.
type YoutubeLink struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"addedAt"`
}

// ContentItem is a link annotated with its owner, for the cross-user feed.
type ContentItem struct {
	YoutubeLink
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
}

// UpdateProfileParams carries only the fields to change; nil means "leave as is".
type UpdateProfileParams struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
}

// AddYoutubeLinkRequest represents the add-link request body.
type AddYoutubeLinkRequest struct {
	YoutubeURL string `json:"youtubeUrl"`
	Title      string `json:"title"`
}

// Pagination is the listing envelope.
type Pagination struct {
	Total           int  `json:"total"`
	Limit           int  `json:"limit"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	NextPage        *int `json:"nextPage"`
	PreviousPage    *int `json:"previousPage"`
}

// NewPagination computes the envelope for a page of results.
func NewPagination(total, page, limit int) Pagination {
	totalPages := (total + limit - 1) / limit
	offset := (page - 1) * limit
	p := Pagination{
		Total:           total,
		Limit:           limit,
		TotalPages:      totalPages,
		CurrentPage:     page,
		HasNextPage:     offset+limit < total,
		HasPreviousPage: page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPreviousPage {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}

// PagedUsers pairs a page of profiles with its pagination envelope.
type PagedUsers struct {
	Users      []UserProfile
	Pagination Pagination
}

// PagedContent pairs a page of the content feed with its pagination envelope.
type PagedContent struct {
	Items      []ContentItem
	Pagination Pagination
}
