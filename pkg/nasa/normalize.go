package nasa

import (
	"net/url"
	"strings"

	"github.com/astroview/astro-edge/pkg/catalog"
)

// fallbackThumbnail is substituted when a featured video item carries no
// thumbnail of its own.
const fallbackThumbnail = "https://www.nasa.gov/wp-content/themes/nasa/assets/images/nasa-logo.svg"

// apodItem is the daily-feed wire shape. Only the fields the normalizer
// consumes are declared; everything else is dropped at this boundary.
type apodItem struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
	URL          string `json:"url"`
	HDURL        string `json:"hdurl"`
	MediaType    string `json:"media_type"`
	ThumbnailURL string `json:"thumbnail_url"`
	Copyright    string `json:"copyright"`
}

// searchResponse is the image library search wire shape.
type searchResponse struct {
	Collection struct {
		Items []searchItem `json:"items"`
	} `json:"collection"`
}

type searchItem struct {
	Data  []searchData `json:"data"`
	Links []searchLink `json:"links"`
}

type searchData struct {
	NasaID      string   `json:"nasa_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Center      string   `json:"center"`
	DateCreated string   `json:"date_created"`
}

type searchLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Render string `json:"render"`
}

// normalizeAPOD maps a daily-feed item into the canonical schema.
// Video items use their thumbnail; without one, a designated fallback
// reference is substituted so the object always renders.
func normalizeAPOD(item *apodItem, relayBase string) *catalog.Object {
	imageRef := item.HDURL
	if imageRef == "" {
		imageRef = item.URL
	}
	if item.MediaType != "image" {
		imageRef = item.ThumbnailURL
		if imageRef == "" {
			imageRef = fallbackThumbnail
		}
	}

	metadata := map[string]string{
		"date":      item.Date,
		"copyright": item.Copyright,
	}

	return &catalog.Object{
		ID:          item.Date,
		Title:       item.Title,
		Description: item.Explanation,
		ImageURL:    RelayURL(relayBase, imageRef),
		Type:        catalog.InferCategory(item.Title),
		Metadata:    catalog.NormalizeMetadata(metadata),
		Source:      catalog.SourceNASA,
	}
}

// normalizeSearchItem maps the best search match into the canonical
// schema. The image reference is the first image-typed link.
func normalizeSearchItem(item *searchItem, query, relayBase string) (*catalog.Object, error) {
	if len(item.Data) == 0 {
		return nil, ErrNotFound
	}
	data := item.Data[0]

	var imageRef string
	for _, link := range item.Links {
		if link.Render == "image" || link.Rel == "preview" {
			imageRef = link.Href
			break
		}
	}

	id := data.NasaID
	if id == "" {
		id = query
	}

	metadata := map[string]string{
		"center":     data.Center,
		"discovered": data.DateCreated,
	}

	return &catalog.Object{
		ID:          id,
		Title:       data.Title,
		Description: data.Description,
		ImageURL:    RelayURL(relayBase, imageRef),
		Type:        catalog.InferCategory(data.Title + " " + strings.Join(data.Keywords, " ")),
		Metadata:    catalog.NormalizeMetadata(metadata),
		Source:      catalog.SourceNASA,
	}, nil
}

// RelayURL builds the proxy relay URL for an upstream image reference.
// Canonical objects never expose a raw upstream hostname.
func RelayURL(relayBase, target string) string {
	if target == "" {
		return ""
	}
	return strings.TrimSuffix(relayBase, "/") + "/relay?url=" + url.QueryEscape(target)
}
