package service

import (
	"context"
	"errors"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.noteRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	err := s.noteRepo.MarkAsRead(ctx, notificationID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundf("notification %d not found", notificationID)
	}
	return err
}
