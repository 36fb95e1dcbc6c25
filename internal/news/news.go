package news

// Article is a normalized feed item. Values are never modified in place;
// helpers such as WithImage return a copy.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"` // empty when the feed had no image metadata
}

// HasImage reports whether an image URL is attached.
func (a Article) HasImage() bool {
	return a.ImageURL != ""
}

// WithImage returns a copy of a carrying the given image URL.
func (a Article) WithImage(imageURL string) Article {
	a.ImageURL = imageURL
	return a
}
