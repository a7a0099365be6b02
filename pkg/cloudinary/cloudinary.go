package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary image upload with delivery optimization. Callers
// hold the interface so handlers stay decoupled from the SDK (and tests can
// stub uploads).
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
}

const (
	imageEager = "q_auto,f_auto,w_1200,c_limit"
)

var eagerAsyncFalse = false

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}

// UploadImage uploads an invoice image with eager optimization and returns the
// secure delivery URL.
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary returned empty URL for %s", publicID)
	}
	return result.SecureURL, nil
}
