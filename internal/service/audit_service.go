package service

import (
	"encoding/json"
	"log"

	"velvet/internal/metrics"
	"velvet/internal/models"
	"velvet/internal/repository"
)

// AuditEvent describes one mutating action for the compliance trail.
type AuditEvent struct {
	ActorID    *uint
	Action     string
	Resource   string
	ResourceID string
	Metadata   map[string]interface{}
	IP         string
	UserAgent  string
}

// AuditService consumes audit events on a buffered channel after the
// financial mutation has committed. A slow or broken audit sink can drop
// events (logged at error severity), never fail or delay a mutation.
type AuditService struct {
	repo   *repository.AuditLogRepository
	events chan AuditEvent
	done   chan struct{}
}

func NewAuditService(repo *repository.AuditLogRepository, queueSize int) *AuditService {
	if queueSize <= 0 {
		queueSize = 256
	}
	s := &AuditService{
		repo:   repo,
		events: make(chan AuditEvent, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues an event without blocking. When the queue is full the
// event is dropped and counted; the caller's result is unaffected.
func (s *AuditService) Record(e AuditEvent) {
	select {
	case s.events <- e:
		metrics.AuditQueueLength.Set(float64(len(s.events)))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		log.Printf("[audit] queue full, dropped event action=%s resource=%s/%s", e.Action, e.Resource, e.ResourceID)
	}
}

// Close drains the queue and stops the worker.
func (s *AuditService) Close() {
	close(s.events)
	<-s.done
}

func (s *AuditService) run() {
	defer close(s.done)
	for e := range s.events {
		metrics.AuditQueueLength.Set(float64(len(s.events)))
		meta := ""
		if len(e.Metadata) > 0 {
			if b, err := json.Marshal(e.Metadata); err == nil {
				meta = string(b)
			}
		}
		err := s.repo.Create(&models.AuditLog{
			ActorID:    e.ActorID,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			IP:         e.IP,
			UserAgent:  e.UserAgent,
			Metadata:   meta,
		})
		if err != nil {
			log.Printf("[audit] write failed action=%s resource=%s/%s: %v", e.Action, e.Resource, e.ResourceID, err)
		}
	}
}
