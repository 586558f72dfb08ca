package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Attachment represents a file attached to a card. Only the metadata
// lives here; the payload sits behind a blob store keyed by StorageKey.
type Attachment struct {
	id          shared.ID
	cardID      shared.ID
	uploaderID  shared.ID
	fileName    string
	contentType string
	size        int64
	storageKey  string
	createdAt   time.Time
}

// NewAttachment creates a new Attachment entity.
func NewAttachment(cardID, uploaderID shared.ID, fileName, contentType string, size int64, storageKey string) (*Attachment, error) {
	if cardID.IsZero() {
		return nil, fmt.Errorf("%w: cardID is required", shared.ErrValidation)
	}
	if uploaderID.IsZero() {
		return nil, fmt.Errorf("%w: uploaderID is required", shared.ErrValidation)
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: fileName is required", shared.ErrValidation)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: size must be non-negative", shared.ErrValidation)
	}
	if storageKey == "" {
		return nil, fmt.Errorf("%w: storageKey is required", shared.ErrValidation)
	}

	return &Attachment{
		id:          shared.NewID(),
		cardID:      cardID,
		uploaderID:  uploaderID,
		fileName:    fileName,
		contentType: contentType,
		size:        size,
		storageKey:  storageKey,
		createdAt:   time.Now().UTC(),
	}, nil
}

// ReconstituteAttachment recreates an Attachment from persistence.
func ReconstituteAttachment(
	id, cardID, uploaderID shared.ID,
	fileName, contentType string,
	size int64,
	storageKey string,
	createdAt time.Time,
) *Attachment {
	return &Attachment{
		id:          id,
		cardID:      cardID,
		uploaderID:  uploaderID,
		fileName:    fileName,
		contentType: contentType,
		size:        size,
		storageKey:  storageKey,
		createdAt:   createdAt,
	}
}

// ID returns the attachment ID.
func (a *Attachment) ID() shared.ID {
	return a.id
}

// CardID returns the owning card ID.
func (a *Attachment) CardID() shared.ID {
	return a.cardID
}

// UploaderID returns the uploader's user ID.
func (a *Attachment) UploaderID() shared.ID {
	return a.uploaderID
}

// FileName returns the original file name.
func (a *Attachment) FileName() string {
	return a.fileName
}

// ContentType returns the MIME type reported at upload.
func (a *Attachment) ContentType() string {
	return a.contentType
}

// Size returns the payload size in bytes.
func (a *Attachment) Size() int64 {
	return a.size
}

// StorageKey returns the blob store key for the payload.
func (a *Attachment) StorageKey() string {
	return a.storageKey
}

// CreatedAt returns when the attachment was uploaded.
func (a *Attachment) CreatedAt() time.Time {
	return a.createdAt
}
