// Package backup writes zip archives of the full data set: one JSONL file
// per relation, named with a timestamp and a nanoid so concurrent runs
// never collide.
package backup

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"encoding/json/v2"

	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/id"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// Manager writes backups of the store into a target directory.
type Manager struct {
	exporter store.Exporter
	dir      string
	logger   *slog.Logger
}

// NewManager creates a backup manager writing into dir.
func NewManager(exporter store.Exporter, dir string, logger *slog.Logger) *Manager {
	return &Manager{
		exporter: exporter,
		dir:      dir,
		logger:   logger,
	}
}

// Run writes one backup archive and returns its path.
func (m *Manager) Run(ctx context.Context) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeStorage, "create backup dir %s", m.dir)
	}

	name, err := id.Generate("backup-" + time.Now().Format("2006-01-02"))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "generate backup name")
	}
	path := filepath.Join(m.dir, name+".zip")

	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeStorage, "create %s", path)
	}
	defer f.Close()

	if err := m.write(ctx, f); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	m.logger.Info("backup written", "path", path)
	return path, nil
}

func (m *Manager) write(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	books, err := m.exporter.AllBooks(ctx)
	if err != nil {
		return err
	}
	if err := writeRelation(zw, "books.jsonl", books); err != nil {
		return err
	}

	users, err := m.exporter.AllUsers(ctx)
	if err != nil {
		return err
	}
	if err := writeRelation(zw, "users.jsonl", users); err != nil {
		return err
	}

	read, err := m.exporter.AllReadEntries(ctx)
	if err != nil {
		return err
	}
	if err := writeRelation(zw, "read_entries.jsonl", read); err != nil {
		return err
	}

	favorites, err := m.exporter.AllFavoriteEntries(ctx)
	if err != nil {
		return err
	}
	if err := writeRelation(zw, "favorite_entries.jsonl", favorites); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorage, "finalize archive")
	}
	return nil
}

// writeRelation streams one relation as JSON lines into the archive.
func writeRelation[T any](zw *zip.Writer, name string, rows []T) error {
	w, err := zw.Create(name)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeStorage, "create archive entry %s", name)
	}
	for i := range rows {
		if err := json.MarshalWrite(w, &rows[i]); err != nil {
			return apperrors.Wrapf(err, apperrors.CodeInternal, "encode %s row", name)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return apperrors.Wrapf(err, apperrors.CodeStorage, "write %s", name)
		}
	}
	return nil
}

// Prune removes the oldest backups, keeping the newest keep archives. Age
// comes from the file modification time; names carry a nanoid and are not
// sortable within a day. Best effort; failures are logged, not returned.
func (m *Manager) Prune(keep int) {
	if keep < 1 {
		return
	}
	paths, err := filepath.Glob(filepath.Join(m.dir, "backup-*.zip"))
	if err != nil || len(paths) <= keep {
		return
	}

	type archive struct {
		path string
		mod  time.Time
	}
	archives := make([]archive, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			m.logger.Warn("failed to stat backup", "path", path, "error", err)
			continue
		}
		archives = append(archives, archive{path: path, mod: info.ModTime()})
	}
	if len(archives) <= keep {
		return
	}
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].mod.Before(archives[j].mod)
	})

	for _, old := range archives[:len(archives)-keep] {
		if err := os.Remove(old.path); err != nil {
			m.logger.Warn("failed to prune backup", "path", old.path, "error", err)
			continue
		}
		m.logger.Debug("pruned backup", "path", old.path)
	}
}
