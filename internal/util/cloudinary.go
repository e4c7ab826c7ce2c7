package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// MaxUploadSize caps a single image upload.
const MaxUploadSize = 10 << 20

type CloudinaryClient struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryClient{
		cld:    cld,
		folder: cfg.CloudinaryFolder,
	}, nil
}

// UploadImage compresses JPEG/PNG input and uploads it, returning the
// secure URL served as WebP.
func (c *CloudinaryClient) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}

	if compressed, err := CompressImage(data, filename); err == nil {
		data = compressed
	}

	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       uuid.New().String(),
		Transformation: "q_auto,f_webp,w_1280",
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}

	url := strings.Replace(result.SecureURL, "/upload/", "/upload/f_webp,q_auto,w_1280/", 1)
	return url, nil
}

// CompressImage re-encodes JPEG and PNG input as quality-80 JPEG. Other
// formats are returned unchanged.
func CompressImage(data []byte, filename string) ([]byte, error) {
	var (
		img image.Image
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".webp", ".gif":
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("error encoding compressed image: %w", err)
	}
	return buf.Bytes(), nil
}

// IsSupportedImage checks the file extension against the accepted formats.
func IsSupportedImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
