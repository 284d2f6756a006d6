package smms

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/logger"
)

// Provider implements domain.ImageHost on top of Client.
type Provider struct {
	client *Client
	order  domain.HistoryOrder
}

var _ domain.ImageHost = (*Provider)(nil)

func NewProvider(client *Client, order domain.HistoryOrder) *Provider {
	return &Provider{client: client, order: order}
}

func (p *Provider) Token(ctx context.Context, username, password string) (string, error) {
	logger.Log("SMMS: Requesting token for %s", username)
	token, err := p.client.Token(ctx, username, password)
	if err != nil {
		logger.LogError("SMMS_TOKEN", username, err)
		return "", err
	}
	logger.Log("SMMS: Token issued for %s", username)
	return token, nil
}

func (p *Provider) Profile(ctx context.Context) (*domain.Profile, error) {
	logger.Log("SMMS: Fetching profile")
	data, err := p.client.Profile(ctx)
	if err != nil {
		logger.LogError("SMMS_PROFILE", "", err)
		return nil, err
	}

	profile := &domain.Profile{
		Username:      data.Username,
		Email:         data.Email,
		Role:          data.Role,
		GroupExpire:   data.GroupExpire,
		EmailVerified: data.EmailVerified != 0,
		DiskUsage:     data.DiskUsage,
		DiskLimit:     data.DiskLimit,
		DiskUsageRaw:  data.DiskUsageRaw,
		DiskLimitRaw:  data.DiskLimitRaw,
	}
	logger.Log("SMMS: Profile for %s (%s / %s)", profile.Username, profile.DiskUsage, profile.DiskLimit)
	return profile, nil
}

func (p *Provider) UploadHistory(ctx context.Context, page int) ([]domain.Image, error) {
	logger.Log("SMMS: Listing upload history page %d", page)
	data, err := p.client.UploadHistory(ctx, page)
	if err != nil {
		logger.LogError("SMMS_HISTORY", "", err)
		return nil, err
	}

	images := make([]domain.Image, 0, len(data))
	for _, d := range data {
		images = append(images, convertImage(d))
	}
	if p.order == domain.HistoryOrderReversed {
		slices.Reverse(images)
	}

	logger.Log("SMMS: Found %d images on page %d", len(images), page)
	return images, nil
}

func (p *Provider) Upload(ctx context.Context, path string) (*domain.Image, error) {
	logger.Log("SMMS: Uploading %s", path)
	data, err := p.client.Upload(ctx, path)
	if err != nil {
		logger.LogError("SMMS_UPLOAD", path, err)
		return nil, err
	}

	image := convertImage(*data)
	if image.Filename == "" {
		image.Filename = filepath.Base(path)
	}
	logger.Log("SMMS: Uploaded %s -> %s", path, image.URL)
	return &image, nil
}

func (p *Provider) Delete(ctx context.Context, hash string) error {
	logger.Log("SMMS: Deleting image %s", hash)
	if err := p.client.Delete(ctx, hash); err != nil {
		logger.LogError("SMMS_DELETE", hash, err)
		return err
	}
	logger.Log("SMMS: Deleted image %s", hash)
	return nil
}

func convertImage(d imageData) domain.Image {
	return domain.Image{
		Width:     d.Width,
		Height:    d.Height,
		Filename:  d.Filename,
		Storename: d.Storename,
		Size:      d.Size,
		Path:      d.Path,
		Hash:      d.Hash,
		CreatedAt: d.CreatedAt.Time,
		URL:       d.URL,
		DeleteURL: d.Delete,
		Page:      d.Page,
	}
}
