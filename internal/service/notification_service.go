package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

type NotificationInput struct {
	// Пустой UserID: уведомление для самого вызывающего.
	UserID  uuid.UUID
	Type    model.NotificationType
	Title   string
	Message string
}

type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifications, users: users}
}

// Create stores a notification. Only admins may address another user.
func (s *NotificationService) Create(ctx context.Context, actor Actor, in NotificationInput) (*model.Notification, error) {
	target := in.UserID
	if target == uuid.Nil {
		target = actor.UserID
	}
	if target != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins notify other users", ErrForbidden)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidArg("title is required")
	}
	typ := in.Type
	if typ == "" {
		typ = model.NotificationTypeSystem
	}
	if _, err := model.ParseNotificationType(string(typ)); err != nil {
		return nil, invalidArg("%v", err)
	}
	if _, err := s.users.GetByID(ctx, target); err != nil {
		return nil, storeErr(err, "user")
	}

	n := &model.Notification{UserID: target, Type: typ, Title: strings.TrimSpace(in.Title), Message: in.Message}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, storeErr(err, "notification")
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool, page calendar.PageRequest) (calendar.Page[model.Notification], error) {
	f := repository.NotificationFilter{UserID: &actor.UserID}
	if unreadOnly {
		unread := false
		f.IsRead = &unread
	}
	return s.search(ctx, f, page)
}

// Search pins the filter to the caller unless the caller is an admin.
func (s *NotificationService) Search(ctx context.Context, actor Actor, f repository.NotificationFilter, page calendar.PageRequest) (calendar.Page[model.Notification], error) {
	if !actor.IsAdmin() {
		if f.UserID != nil && *f.UserID != actor.UserID {
			return calendar.Page[model.Notification]{}, fmt.Errorf("%w: notifications of another user", ErrForbidden)
		}
		f.UserID = &actor.UserID
	}
	return s.search(ctx, f, page)
}

func (s *NotificationService) search(ctx context.Context, f repository.NotificationFilter, page calendar.PageRequest) (calendar.Page[model.Notification], error) {
	items, total, err := s.notifications.Search(ctx, f, page)
	if err != nil {
		return calendar.Page[model.Notification]{}, fmt.Errorf("search notifications: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

func (s *NotificationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	if n.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: notification of another user", ErrForbidden)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*model.Notification, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return nil, storeErr(err, "notification")
	}
	return s.Get(ctx, actor, id)
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return storeErr(s.notifications.Delete(ctx, id), "notification")
}
