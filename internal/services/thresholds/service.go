// Package thresholds serves the current analysis thresholds and hot-reloads
// them when the thresholds file changes on disk.
package thresholds

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/logger"
)

// EventType defines the type of thresholds event.
type EventType int

const (
	// EventReloaded indicates the thresholds were reloaded from disk.
	EventReloaded EventType = iota
	// EventError indicates a reload or watch failure.
	EventError
)

// Event represents a thresholds service event.
type Event struct {
	Type       EventType
	Thresholds config.Thresholds
	Error      error
}

// Service holds the current thresholds and watches the backing file.
type Service struct {
	mu            sync.RWMutex
	current       config.Thresholds
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	stopOnce      sync.Once
}

// New loads thresholds from the given path and starts watching it. An empty
// path disables watching and serves the defaults.
func New(path string) (*Service, error) {
	th, err := config.LoadThresholds(path)
	if err != nil {
		return nil, err
	}

	s := &Service{
		current:   th,
		filePath:  path,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if path != "" {
		if err := s.startWatcher(); err != nil {
			// A missing watch directory is not fatal; the service just
			// serves the values loaded at startup.
			logger.Warn("thresholds file watch disabled", "error", err)
		}
	}

	return s, nil
}

// Current returns the active thresholds.
func (s *Service) Current() config.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Close stops the watcher.
func (s *Service) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.reload()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// reload re-reads the thresholds file after an external change.
func (s *Service) reload() {
	th, err := config.LoadThresholds(s.filePath)
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.Lock()
	s.current = th
	s.mu.Unlock()

	logger.Info("thresholds reloaded", "path", s.filePath)
	s.sendEvent(Event{Type: EventReloaded, Thresholds: th})
}

func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Drop when nobody is draining; events are advisory.
	}
}
