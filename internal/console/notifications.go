package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultFeedCapacity     = 50
	logEventNotification    = "console_notification"
	logFieldTitle           = "title"
	logFieldVariant         = "variant"
	logFieldNotificationID  = "notification_id"
	logFieldDescriptionText = "description"
)

// Variant styles a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message shown to the operator.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Feed keeps the most recent notifications, newest last.
type Feed struct {
	mutex    sync.RWMutex
	capacity int
	entries  []Notification
	logger   *zap.Logger
	clock    func() time.Time
}

func NewFeed(capacity int, logger *zap.Logger, clock func() time.Time) *Feed {
	if capacity <= 0 {
		capacity = defaultFeedCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Feed{
		capacity: capacity,
		logger:   logger,
		clock:    clock,
	}
}

// Publish appends a notification, dropping the oldest entry once the feed is full.
func (feed *Feed) Publish(title string, description string, variant Variant) Notification {
	if variant == "" {
		variant = VariantDefault
	}
	notification := Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   feed.clock().UTC(),
	}

	feed.mutex.Lock()
	feed.entries = append(feed.entries, notification)
	if overflow := len(feed.entries) - feed.capacity; overflow > 0 {
		feed.entries = append([]Notification(nil), feed.entries[overflow:]...)
	}
	feed.mutex.Unlock()

	feed.logger.Info(logEventNotification,
		zap.String(logFieldNotificationID, notification.ID),
		zap.String(logFieldTitle, title),
		zap.String(logFieldDescriptionText, description),
		zap.String(logFieldVariant, string(variant)),
	)
	return notification
}

// List returns a copy of the feed.
func (feed *Feed) List() []Notification {
	feed.mutex.RLock()
	defer feed.mutex.RUnlock()
	return append([]Notification(nil), feed.entries...)
}
