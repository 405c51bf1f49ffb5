package domain

import (
	"errors"
	"time"
)

// ErrPushRejected marks a push the provider refused for the message itself,
// such as an unregistered or malformed device token.
var ErrPushRejected = errors.New("push rejected by provider")

// Collections the relay watches. CollectionNotifications is kept for older clients.
const (
	CollectionPushNotifications = "push_notifications"
	CollectionNotifications     = "notifications"
)

// KnownCollection reports whether name is a collection the relay forwards.
func KnownCollection(name string) bool {
	return name == CollectionPushNotifications || name == CollectionNotifications
}

// NotificationDocument is a pending push stored in a collection until it is delivered.
type NotificationDocument struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Collection string    `json:"collection" gorm:"index"`
	Token      string    `json:"token"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (NotificationDocument) TableName() string {
	return "notification_documents"
}

// DocumentCreatedEvent is published on the queue when a document is written.
type DocumentCreatedEvent struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
}

// PushMessage is what gets handed to the push provider.
type PushMessage struct {
	Token           string
	Title           string
	Body            string
	AndroidChannel  string
	AndroidPriority string
	APNSSound       string
	APNSBadge       int
}
