package models

import (
	"errors"

	"gorm.io/gorm"

	"github.com/townboard/eventboard/apperror"
	"github.com/townboard/eventboard/media"
)

// EventStore is the gorm-backed metadata store for events. It owns the
// authoritative list of live media refs per event.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// List returns all events, newest first.
func (s *EventStore) List() ([]media.EventRecord, error) {
	var events []Event
	if err := s.db.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, apperror.NewStorage("failed to list events", err)
	}
	records := make([]media.EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, toRecord(e))
	}
	return records, nil
}

func (s *EventStore) Insert(title, link string, files []string) (media.EventRecord, error) {
	if files == nil {
		files = []string{}
	}
	event := Event{Title: title, Link: link, MediaFiles: files}
	if err := s.db.Create(&event).Error; err != nil {
		return media.EventRecord{}, apperror.NewStorage("failed to create event", err)
	}
	return toRecord(event), nil
}

func (s *EventStore) Get(id uint) (media.EventRecord, error) {
	var event Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return media.EventRecord{}, apperror.NewNotFound("event")
		}
		return media.EventRecord{}, apperror.NewStorage("failed to load event", err)
	}
	return toRecord(event), nil
}

func (s *EventStore) Update(id uint, title, link string, files []string) (media.EventRecord, error) {
	var event Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return media.EventRecord{}, apperror.NewNotFound("event")
		}
		return media.EventRecord{}, apperror.NewStorage("failed to load event", err)
	}
	if files == nil {
		files = []string{}
	}
	event.Title = title
	event.Link = link
	event.MediaFiles = files
	if err := s.db.Save(&event).Error; err != nil {
		return media.EventRecord{}, apperror.NewStorage("failed to update event", err)
	}
	return toRecord(event), nil
}

func (s *EventStore) Delete(id uint) error {
	res := s.db.Delete(&Event{}, id)
	if res.Error != nil {
		return apperror.NewStorage("failed to delete event", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("event")
	}
	return nil
}

func toRecord(e Event) media.EventRecord {
	files := e.MediaFiles
	if files == nil {
		files = []string{}
	}
	return media.EventRecord{
		ID:         e.ID,
		Title:      e.Title,
		Link:       e.Link,
		MediaFiles: files,
		CreatedAt:  e.CreatedAt,
	}
}
