package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"
	"storefront-be/internal/user"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const MaxImageSize = 10 << 20

var (
	ErrNotConfigured = fmt.Errorf("image uploads not configured: %w", apperr.ErrRemoteUnavailable)
	ErrFileTooLarge  = apperr.Validation("file too large (max 10MB)")
	ErrFileType      = apperr.Validation("invalid file type, only jpg, jpeg, png, gif, webp allowed")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadAPI is the part of the Cloudinary upload API in use.
type UploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Service struct {
	api   UploadAPI
	authz user.Authorizer
}

// NewCloudinaryService returns a service with no backend when credentials
// are missing; its uploads then fail with ErrNotConfigured.
func NewCloudinaryService(cloudName, apiKey, apiSecret string, authz user.Authorizer) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return &Service{authz: authz}, nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return NewService(&cld.Upload, authz), nil
}

func NewService(api UploadAPI, authz user.Authorizer) *Service {
	return &Service{api: api, authz: authz}
}

func ValidateImageFile(file *multipart.FileHeader) error {
	if file.Size > MaxImageSize {
		return ErrFileTooLarge
	}
	if !allowedExts[strings.ToLower(filepath.Ext(file.Filename))] {
		return ErrFileType
	}
	return nil
}

// Upload stores an admin-supplied product image under folder.
func (s *Service) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*Image, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Upload"),
	)

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := ValidateImageFile(fh); err != nil {
		return nil, err
	}
	if s.api == nil {
		return nil, ErrNotConfigured
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	name := strings.ReplaceAll(strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename)), " ", "_")
	publicID := fmt.Sprintf("%d_%s", time.Now().Unix(), name)

	res, err := s.api.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		log.Error("cloudinary upload failed", zap.Error(err))
		return nil, apperr.Remote(err)
	}
	if res == nil || res.Error.Message != "" {
		msg := "empty response"
		if res != nil {
			msg = res.Error.Message
		}
		log.Error("cloudinary rejected upload", zap.String("reason", msg))
		return nil, apperr.Remote(errors.New(msg))
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	log.Info("image uploaded", zap.String("public_id", res.PublicID))
	return &Image{URL: url, PublicID: res.PublicID}, nil
}

func (s *Service) Delete(ctx context.Context, publicID string) error {
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if publicID == "" {
		return nil
	}
	if s.api == nil {
		return ErrNotConfigured
	}

	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return apperr.Remote(err)
	}
	if res.Result != "ok" {
		return apperr.NotFound("image")
	}
	return nil
}
