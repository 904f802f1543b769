package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// MarketplaceAPI covers crop listings and categories.
type MarketplaceAPI struct{ c *Client }

func (c *Client) Marketplace() MarketplaceAPI { return MarketplaceAPI{c} }

// ListingInput is sent as multipart form data. On update, zero fields are left
// unchanged and any images replace the existing ones.
type ListingInput struct {
	CropName        string
	Category        string
	Quantity        string
	Rate            float64
	Location        string
	ContactNumber   string
	OptionalContact string
	Description     string
	Images          []File
	Video           *File
}

func (in ListingInput) body() Body {
	fields := url.Values{}
	fields.Set("crop_name", in.CropName)
	fields.Set("category", in.Category)
	fields.Set("quantity", in.Quantity)
	if in.Rate > 0 {
		fields.Set("rate", strconv.FormatFloat(in.Rate, 'f', 2, 64))
	}
	fields.Set("location", in.Location)
	fields.Set("contact_number", in.ContactNumber)
	fields.Set("optional_contact", in.OptionalContact)
	fields.Set("description", in.Description)

	files := make([]File, 0, len(in.Images)+1)
	for _, img := range in.Images {
		img.Field = "images"
		files = append(files, img)
	}
	if in.Video != nil {
		v := *in.Video
		v.Field = "video"
		files = append(files, v)
	}
	return Multipart(fields, files...)
}

// List returns every listing, filtered by search when it is not empty.
func (a MarketplaceAPI) List(ctx context.Context, search string) ([]Listing, error) {
	path := "/marketplace/list/"
	if search != "" {
		path += "?" + url.Values{"searchquery": {search}}.Encode()
	}
	var out []Listing
	if err := a.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a MarketplaceAPI) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var out Listing
	if err := a.c.Do(ctx, http.MethodGet, "/marketplace/listings/"+id.String()+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a MarketplaceAPI) Mine(ctx context.Context) ([]Listing, error) {
	var out []Listing
	if err := a.c.Do(ctx, http.MethodGet, "/marketplace/listings/my/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a MarketplaceAPI) Create(ctx context.Context, in ListingInput) (*Listing, error) {
	var out Listing
	if err := a.c.Do(ctx, http.MethodPost, "/marketplace/list/", in.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a MarketplaceAPI) Update(ctx context.Context, id uuid.UUID, in ListingInput) (*Listing, error) {
	var out Listing
	if err := a.c.Do(ctx, http.MethodPut, "/marketplace/listings/"+id.String()+"/", in.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a MarketplaceAPI) Delete(ctx context.Context, id uuid.UUID) error {
	return a.c.Do(ctx, http.MethodDelete, "/marketplace/listings/"+id.String()+"/", nil, nil)
}

func (a MarketplaceAPI) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := a.c.Do(ctx, http.MethodGet, "/marketplace/categories/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
