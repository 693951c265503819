package orchestrators

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"campdesk/internal/domain/center"
	"campdesk/internal/domain/stage"
)

// PhotoStore stores an uploaded image and returns its public URL.
type PhotoStore interface {
	Put(name string, r io.Reader) (string, error)
}

// StageStoreForPhoto defines the stage access AttachStagePhoto needs.
type StageStoreForPhoto interface {
	GetByID(ctx context.Context, id string) (stage.Stage, error)
	Save(ctx context.Context, value stage.Stage) error
}

// AttachPhotoInput carries one upload.
type AttachPhotoInput struct {
	EntityID string
	Filename string
	Body     io.Reader
}

// AttachStagePhotoDeps holds dependencies for AttachStagePhoto.
type AttachStagePhotoDeps struct {
	StageStore StageStoreForPhoto
	Photos     PhotoStore
}

// ExecuteAttachStagePhoto stores the upload and records its URL on the
// stage. This is the secondary step of a two-step create: the stage record
// already exists before the photo is attached.
// PRE: the stage exists; Body decodes as an image
// POST: the stage's PhotoURL points at the stored, downsized photo
func ExecuteAttachStagePhoto(ctx context.Context, input AttachPhotoInput, deps AttachStagePhotoDeps) (string, error) {
	if input.EntityID == "" {
		return "", errors.New("stage ID is required")
	}

	entity, err := deps.StageStore.GetByID(ctx, input.EntityID)
	if err != nil {
		return "", err
	}

	url, err := deps.Photos.Put(input.EntityID+"_"+input.Filename, input.Body)
	if err != nil {
		return "", err
	}

	entity.PhotoURL = url
	if err := deps.StageStore.Save(ctx, entity); err != nil {
		return "", err
	}

	slog.Info("catalog_event", "event", "stage_photo_attached", "stage_id", entity.ID, "url", url)
	return url, nil
}

// CenterStoreForPhoto defines the center access AttachCenterPhoto needs.
type CenterStoreForPhoto interface {
	GetByID(ctx context.Context, id string) (center.Center, error)
	Save(ctx context.Context, value center.Center) error
}

// AttachCenterPhotoDeps holds dependencies for AttachCenterPhoto.
type AttachCenterPhotoDeps struct {
	CenterStore CenterStoreForPhoto
	Photos      PhotoStore
}

// ExecuteAttachCenterPhoto stores the upload and records its URL on the center.
func ExecuteAttachCenterPhoto(ctx context.Context, input AttachPhotoInput, deps AttachCenterPhotoDeps) (string, error) {
	if input.EntityID == "" {
		return "", errors.New("center ID is required")
	}

	entity, err := deps.CenterStore.GetByID(ctx, input.EntityID)
	if err != nil {
		return "", err
	}

	url, err := deps.Photos.Put(input.EntityID+"_"+input.Filename, input.Body)
	if err != nil {
		return "", err
	}

	entity.PhotoURL = url
	if err := deps.CenterStore.Save(ctx, entity); err != nil {
		return "", err
	}

	slog.Info("catalog_event", "event", "center_photo_attached", "center_id", entity.ID, "url", url)
	return url, nil
}
