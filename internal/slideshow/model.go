package slideshow

type Slide struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle,omitempty"`
	ImageURL string  `json:"image_url"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position int     `json:"position"`
	IsActive bool    `json:"is_active"`
}

type NewSlideInput struct {
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle,omitempty"`
	ImageURL string  `json:"image_url"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position int     `json:"position"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type UpdateSlideInput struct {
	ID       string  `json:"-"`
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position *int    `json:"position,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
