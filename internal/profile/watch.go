package profile

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch observes profiles.db's parent directory for external writes (e.g. a
// second Peek instance, or a companion app, changing the active profile)
// and logs when the on-disk active slug disagrees with currentSlug.
// Switching profiles still requires a process restart (spec §5); this is
// observability, not live-reload.
func (m *Manager) Watch(ctx context.Context, currentSlug string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(m.userDataRoot); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				m.checkActiveSlugDrift(ctx, currentSlug)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Warn("profiles.db watch error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (m *Manager) checkActiveSlugDrift(ctx context.Context, currentSlug string) {
	onDisk, err := m.store.GetActiveSlug(ctx)
	if err != nil {
		m.logger.Warn("reading active profile after external change", slog.Any("error", err))
		return
	}

	if onDisk != "" && onDisk != currentSlug {
		m.logger.Warn("active profile changed externally; restart to pick up new profile",
			slog.String("running", currentSlug), slog.String("onDisk", onDisk))
	}
}
