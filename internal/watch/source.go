package watch

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Source subscribes to change notifications for a directory.
type Source interface {
	Subscribe(dir string) (Subscription, error)
}

// Subscription is an active stream of change notifications. Events and
// Errors may be closed by the source when the underlying mechanism shuts
// down.
type Subscription interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// FSNotifySource watches directories with fsnotify. Directories are watched
// non-recursively.
type FSNotifySource struct{}

// NewFSNotifySource returns a Source backed by the platform's notification
// primitive.
func NewFSNotifySource() *FSNotifySource {
	return &FSNotifySource{}
}

// Subscribe starts watching dir.
func (s *FSNotifySource) Subscribe(dir string) (Subscription, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	sub := &fsnotifySubscription{
		watcher: watcher,
		events:  make(chan Event),
		done:    make(chan struct{}),
	}

	go sub.forward()

	return sub, nil
}

type fsnotifySubscription struct {
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	once    sync.Once
}

func (s *fsnotifySubscription) Events() <-chan Event { return s.events }

func (s *fsnotifySubscription) Errors() <-chan error { return s.watcher.Errors }

func (s *fsnotifySubscription) Close() error {
	var err error

	s.once.Do(func() {
		close(s.done)
		err = s.watcher.Close()
	})

	return err
}

// forward translates fsnotify events until the watcher or subscription closes.
func (s *fsnotifySubscription) forward() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				close(s.events)
				return
			}

			select {
			case s.events <- Event{Path: ev.Name, Op: translateOp(ev.Op)}:
			case <-s.done:
				return
			}
		}
	}
}

func translateOp(op fsnotify.Op) Op {
	var out Op

	if op.Has(fsnotify.Create) {
		out |= OpCreate
	}

	if op.Has(fsnotify.Write) {
		out |= OpWrite
	}

	if op.Has(fsnotify.Remove) {
		out |= OpRemove
	}

	if op.Has(fsnotify.Rename) {
		out |= OpRename
	}

	if op.Has(fsnotify.Chmod) {
		out |= OpChmod
	}

	return out
}
