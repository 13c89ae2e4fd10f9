package persons

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/your-org/persondir/internal/storage"
)

// PictureStore is the object storage behind profile pictures.
type PictureStore interface {
	// UploadDataURI stores an inline data:image payload and returns its key.
	UploadDataURI(ctx context.Context, dataURI string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	// PresignedURL issues a temporary access URL for key.
	PresignedURL(ctx context.Context, key string) (string, error)
}

// ObjectLister enumerates and batch-deletes stored pictures.
type ObjectLister interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

var ErrPicturesDisabled = errors.New("picture storage is not configured")

// NoPictures is the PictureStore used when object storage is not configured.
// Uploads fail; stored keys resolve to "".
type NoPictures struct{}

func (NoPictures) UploadDataURI(context.Context, string) (string, error) {
	return "", ErrPicturesDisabled
}

func (NoPictures) DeleteObject(context.Context, string) error { return ErrPicturesDisabled }

func (NoPictures) PresignedURL(context.Context, string) (string, error) {
	return "", ErrPicturesDisabled
}

// IsManagedPicture reports whether a stored picture value is an object key
// owned by this service rather than an external URL.
func IsManagedPicture(v string) bool {
	return v != "" && !strings.HasPrefix(v, "http")
}

// refersToKey reports whether submitted is an access URL for key, as sent
// back by clients that echo the profilePicture of a previous read.
func refersToKey(submitted, key string) bool {
	if !IsManagedPicture(key) || !strings.HasPrefix(submitted, "http") {
		return false
	}
	u, err := url.Parse(submitted)
	if err != nil {
		return false
	}
	return path.Base(u.Path) == key
}
