package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultTransformation = "c_limit,w_800,h_600/q_auto"

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	default:
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	folder := cfg.Folder
	if folder == "" {
		folder = "mart/products"
	}
	return &Cloudinary{cld: cld, Folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, name string) (Image, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.Folder,
		ResourceType:   "image",
		Transformation: defaultTransformation,
	})
	if err != nil {
		return Image{}, fmt.Errorf("failed to upload %s to cloudinary: %w", name, err)
	}
	if res.Error.Message != "" {
		return Image{}, fmt.Errorf("failed to upload %s to cloudinary: %s", name, res.Error.Message)
	}
	if res.SecureURL == "" || res.PublicID == "" {
		return Image{}, errors.New("upload failed: no result returned from cloudinary")
	}
	return Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete from cloudinary: %s", res.Error.Message)
	}
	return nil
}
