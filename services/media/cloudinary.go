package mediasvc

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
)

type cloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ core.MediaService = (*cloudinaryService)(nil)

func NewCloudinaryService(conf *core.Config) (core.MediaService, error) {
	cld, err := cloudinary.NewFromParams(
		conf.Cloudinary.CloudName,
		conf.Cloudinary.ApiKey,
		conf.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, errors.Wrap(err, "configuring cloudinary")
	}
	return &cloudinaryService{
		cld:    cld,
		folder: strings.ToLower(conf.AppName),
	}, nil
}

func (svc *cloudinaryService) Upload(ctx context.Context, r io.Reader, filename string) (core.Upload, error) {
	publicID := uuid.NewString()
	if ext := filepath.Ext(filename); ext != "" {
		publicID += ext
	}

	res, err := svc.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: publicID,
		Folder:   svc.folder,
	})
	if err != nil {
		return core.Upload{}, errors.Wrap(err, "uploading to cloudinary")
	}
	return core.Upload{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
	}, nil
}

func (svc *cloudinaryService) Delete(ctx context.Context, publicID string) error {
	_, err := svc.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return errors.Wrap(err, "deleting from cloudinary")
}
