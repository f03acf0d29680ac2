package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const removeConcurrency = 4

// AddAttachment stores upload in object storage and records it on the task.
// The object is removed again if the task cannot be saved.
func (s *TaskService) AddAttachment(ctx context.Context, caller *models.User, taskID string, upload Upload) (*models.Task, error) {
	if s.objects == nil {
		return nil, apperror.ErrStorageUnavailable
	}

	task, err := s.findVisible(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(upload.Name)
	if name == "." || name == string(filepath.Separator) {
		return nil, apperror.RequiredField("File")
	}

	attachment := models.Attachment{
		ID:          primitive.NewObjectID(),
		Name:        name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		UploadedBy:  caller.ID,
		UploadedAt:  timeNow(),
	}
	attachment.Object = fmt.Sprintf("%s/%s_%s", task.ID.Hex(), attachment.ID.Hex(), name)

	if err := s.objects.Put(ctx, attachment.Object, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, apperror.Internal(fmt.Errorf("upload attachment: %w", err))
	}

	task.Attachments = append(task.Attachments, attachment)
	task.LastChangedBy = &caller.ID
	if err := s.tasks.Update(ctx, task); err != nil {
		if rmErr := s.objects.Remove(context.WithoutCancel(ctx), attachment.Object); rmErr != nil {
			s.log.Warn("orphaned attachment object", zap.String("object", attachment.Object), zap.Error(rmErr))
		}
		return nil, apperror.Internal(err)
	}
	return task, nil
}

// AttachmentURL returns a presigned download link for one attachment of a
// task visible to caller.
func (s *TaskService) AttachmentURL(ctx context.Context, caller *models.User, taskID, attachmentID string) (string, error) {
	if s.objects == nil {
		return "", apperror.ErrStorageUnavailable
	}

	task, err := s.findVisible(ctx, caller, taskID)
	if err != nil {
		return "", err
	}
	id, ok := parseID(attachmentID)
	if !ok {
		return "", apperror.ErrNotFound
	}
	attachment := task.Attachment(id)
	if attachment == nil {
		return "", apperror.ErrNotFound
	}

	url, err := s.objects.PresignedURL(ctx, attachment.Object, attachment.Name, s.urlTTL)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("presign attachment: %w", err))
	}
	return url, nil
}

// URLTTL is how long attachment links stay valid.
func (s *TaskService) URLTTL() string {
	return s.urlTTL.String()
}

// removeAttachments deletes the attachment objects of already-deleted
// tasks. Failures are logged; the task documents are gone either way.
func removeAttachments(ctx context.Context, objects ObjectStore, log *zap.Logger, tasks ...models.Task) {
	if objects == nil {
		return
	}

	var jobs []utils.ParallelTask
	for _, task := range tasks {
		for _, a := range task.Attachments {
			object := a.Object
			jobs = append(jobs, func(ctx context.Context) error {
				return objects.Remove(ctx, object)
			})
		}
	}

	if err := utils.RunParallelTasks(context.WithoutCancel(ctx), removeConcurrency, jobs); err != nil {
		log.Warn("failed to remove attachment objects", zap.Error(err))
	}
}
