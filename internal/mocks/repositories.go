package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/payment-relay/internal/domain"
)

// MockNotificationRepository is an in-memory NotificationRepository.
// The Func fields override the default behaviour when set.
type MockNotificationRepository struct {
	SaveFunc        func(ctx context.Context, doc *domain.NotificationDocument) error
	FindByIDFunc    func(ctx context.Context, collection, id string) (*domain.NotificationDocument, error)
	FindPendingFunc func(ctx context.Context, olderThan time.Time, limit int) ([]domain.NotificationDocument, error)
	DeleteFunc      func(ctx context.Context, collection, id string) error

	mu   sync.Mutex
	docs map[string]domain.NotificationDocument
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		docs: make(map[string]domain.NotificationDocument),
	}
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func (m *MockNotificationRepository) Save(ctx context.Context, doc *domain.NotificationDocument) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[docKey(doc.Collection, doc.ID)] = *doc
	return nil
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, collection, id string) (*domain.NotificationDocument, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, collection, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docKey(collection, id)]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *MockNotificationRepository) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]domain.NotificationDocument, error) {
	if m.FindPendingFunc != nil {
		return m.FindPendingFunc(ctx, olderThan, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.NotificationDocument
	for _, doc := range m.docs {
		if doc.Token != "" && doc.CreatedAt.Before(olderThan) {
			out = append(out, doc)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationRepository) Delete(ctx context.Context, collection, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, collection, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, docKey(collection, id))
	return nil
}

// Len returns the number of stored documents.
func (m *MockNotificationRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}
