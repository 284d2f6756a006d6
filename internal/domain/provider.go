package domain

import "context"

// ImageHost is the remote image hosting service. Every method performs a
// single round trip and is safe to call from a background goroutine.
type ImageHost interface {
	Token(ctx context.Context, username, password string) (string, error)

	Profile(ctx context.Context) (*Profile, error)

	UploadHistory(ctx context.Context, page int) ([]Image, error)

	Upload(ctx context.Context, path string) (*Image, error)

	Delete(ctx context.Context, hash string) error
}
