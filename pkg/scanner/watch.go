package scanner

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-tasks/pkg/debounce"
	"github.com/mattsolo1/grove-tasks/pkg/docstore"
)

// Watch subscribes to document changes. Creates and modifications are
// debounced per document; deletes and renames apply at once. A delete of a
// path that is not a document is taken as a directory and purges everything
// below it. Watch is a no-op when already watching.
func (s *Scanner) Watch(ctx context.Context) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.debouncer != nil {
		return
	}

	// Rescans run to completion even after ctx ends so that Stop can flush
	// the trailing ones.
	scanCtx := context.WithoutCancel(ctx)
	d := debounce.New(s.cfg.Get().Debounce, func(path string) {
		if err := s.ScanDocument(scanCtx, path); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("rescan failed")
		}
	})

	s.debouncer = d

	changed := func(ev docstore.Event) {
		if !s.indexable(ev.Path) {
			return
		}
		if d.Pending(ev.Path) {
			s.logger.WithField("path", ev.Path).Debug("rescan already scheduled, coalescing")
		}
		d.Trigger(ev.Path)
	}
	deleted := func(ev docstore.Event) {
		if docstore.IsDocument(ev.Path) {
			d.Cancel(ev.Path)
			s.RemoveDocument(ev.Path)
			return
		}
		for _, p := range s.RemovePrefix(ev.Path) {
			d.Cancel(p)
		}
	}
	renamed := func(ev docstore.Event) {
		d.Cancel(ev.OldPath)
		if err := s.RenameDocument(ctx, ev.OldPath, ev.Path); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"from": ev.OldPath,
				"to":   ev.Path,
			}).Warn("rename rescan failed")
		}
	}
	s.unsubs = []func(){
		s.docs.Subscribe(docstore.EventCreate, changed),
		s.docs.Subscribe(docstore.EventModify, changed),
		s.docs.Subscribe(docstore.EventDelete, deleted),
		s.docs.Subscribe(docstore.EventRename, renamed),
	}
	s.logger.WithField("debounce", s.cfg.Get().Debounce).Debug("watching documents")
}

// Stop unsubscribes from the document store and runs any pending trailing
// rescans before returning.
func (s *Scanner) Stop() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	if s.debouncer != nil {
		s.debouncer.Flush()
		s.debouncer.Stop()
		s.debouncer = nil
	}
}
