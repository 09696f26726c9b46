package service

import (
	"context"

	"github.com/khoahotran/user-management/internal/domain/user"
)

type EventPublisher interface {
	PublishUserEvent(ctx context.Context, ev user.Event) error
}

type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishUserEvent(context.Context, user.Event) error { return nil }
