package backup

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedAction struct {
	action, resource, details string
}

type fakeAudit struct {
	actions []recordedAction
}

func (f *fakeAudit) RecordSystemAction(_ context.Context, action, resource, details string) error {
	f.actions = append(f.actions, recordedAction{action, resource, details})
	return nil
}

func staticExporter(name string, docs any) CollectionExporter {
	return ExporterFunc(name, func(context.Context) (any, error) { return docs, nil })
}

func failingExporter(name string) CollectionExporter {
	return ExporterFunc(name, func(context.Context) (any, error) {
		return nil, errors.New("table gone")
	})
}

// newTestEngine builds an engine whose dump tool cannot exist, forcing
// the JSON fallback path.
func newTestEngine(t *testing.T, exporters []CollectionExporter, audit AuditSink) *Engine {
	t.Helper()
	e := New(Config{
		Dir:         filepath.Join(t.TempDir(), "backups"),
		DumpCommand: "definitely-not-a-dump-tool",
		DumpTimeout: 2 * time.Second,
	}, exporters, audit)
	return e
}

func TestCreateBackupFallbackRoundTrip(t *testing.T) {
	audit := &fakeAudit{}
	exporters := []CollectionExporter{
		staticExporter("users", []map[string]any{{"id": 1, "email": "a@b.c"}}),
		staticExporter("projects", []map[string]any{{"id": 7, "title": "thesis"}}),
	}
	e := newTestEngine(t, exporters, audit)

	res, err := e.CreateBackup(context.Background(), KindManual)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Filename, "manual-"))
	assert.True(t, strings.HasSuffix(res.Filename, ".zip"))
	assert.Greater(t, res.Size, int64(0))

	// Listing reflects disk truth and matches the reported size.
	infos, err := e.ListBackups()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, res.Filename, infos[0].Filename)
	assert.Equal(t, res.Size, infos[0].Size)

	// The archive holds one database/ JSON file per collection.
	zr, err := zip.OpenReader(filepath.Join(e.cfg.Dir, res.Filename))
	require.NoError(t, err)
	defer zr.Close()
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["database/users.json"])
	assert.True(t, names["database/projects.json"])

	require.Len(t, audit.actions, 1)
	assert.Equal(t, "backup.created", audit.actions[0].action)
	assert.Equal(t, res.Filename, audit.actions[0].resource)
	assert.Contains(t, audit.actions[0].details, "method=json-export")
}

func TestCreateBackupSkipsFailingCollection(t *testing.T) {
	audit := &fakeAudit{}
	e := newTestEngine(t, []CollectionExporter{
		staticExporter("users", []map[string]any{{"id": 1}}),
		failingExporter("tasks"),
	}, audit)

	res, err := e.CreateBackup(context.Background(), KindScheduled)
	require.NoError(t, err, "one broken collection must not abort the backup")

	zr, err := zip.OpenReader(filepath.Join(e.cfg.Dir, res.Filename))
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "database/users.json")
	assert.NotContains(t, names, "database/tasks.json")

	require.Len(t, audit.actions, 1)
	assert.Contains(t, audit.actions[0].details, "skipped=tasks")
}

func TestCreateBackupFailsWhenNothingExports(t *testing.T) {
	e := newTestEngine(t, []CollectionExporter{failingExporter("users")}, nil)
	_, err := e.CreateBackup(context.Background(), KindManual)
	require.Error(t, err, "dump tool down and empty fallback is a failed backup")
	assertNoTempDirs(t, e.cfg.Dir)
}

func TestCreateBackupIncludesUploads(t *testing.T) {
	uploads := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "report.pdf"), []byte("pdf"), 0o644))
	e := newTestEngine(t, []CollectionExporter{staticExporter("users", nil)}, nil)
	e.cfg.UploadsDir = uploads

	res, err := e.CreateBackup(context.Background(), KindManual)
	require.NoError(t, err)

	zr, err := zip.OpenReader(filepath.Join(e.cfg.Dir, res.Filename))
	require.NoError(t, err)
	defer zr.Close()
	found := false
	for _, f := range zr.File {
		if f.Name == "uploads/report.pdf" {
			found = true
		}
	}
	assert.True(t, found, "uploads directory content belongs in the archive")
}

func TestCreateBackupMissingUploadsDirIsNotAnError(t *testing.T) {
	e := newTestEngine(t, []CollectionExporter{staticExporter("users", nil)}, nil)
	e.cfg.UploadsDir = filepath.Join(t.TempDir(), "does-not-exist")

	_, err := e.CreateBackup(context.Background(), KindManual)
	assert.NoError(t, err)
}

func TestCreateBackupCleansTempOnFailure(t *testing.T) {
	e := newTestEngine(t, []CollectionExporter{staticExporter("users", nil)}, nil)
	// Pin the clock so the final archive name is predictable, then
	// occupy that name with a non-empty directory: the rename into
	// place has to fail.
	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }
	blocker := filepath.Join(e.cfg.Dir, "manual-2026-05-01T09-30-00Z.zip")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "x"), 0o755))

	_, err := e.CreateBackup(context.Background(), KindManual)
	require.Error(t, err)
	assertNoTempDirs(t, e.cfg.Dir)
}

func TestDeleteBackupTraversalRejected(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	require.NoError(t, os.MkdirAll(e.cfg.Dir, 0o755))

	for _, name := range []string{"../../etc/passwd", "a/b.zip", `a\b.zip`, "..", ""} {
		err := e.DeleteBackup(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidFilename, "name %q", name)
	}
}

func TestDeleteBackupNotFound(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	require.NoError(t, os.MkdirAll(e.cfg.Dir, 0o755))
	err := e.DeleteBackup(context.Background(), "missing.zip")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestDeleteBackupWritesAudit(t *testing.T) {
	audit := &fakeAudit{}
	e := newTestEngine(t, []CollectionExporter{staticExporter("users", nil)}, audit)
	res, err := e.CreateBackup(context.Background(), KindManual)
	require.NoError(t, err)

	require.NoError(t, e.DeleteBackup(context.Background(), res.Filename))
	require.Len(t, audit.actions, 2)
	assert.Equal(t, "backup.deleted", audit.actions[1].action)

	infos, err := e.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestRestoreUnsupported(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	err := e.RestoreBackup(context.Background(), "manual-x.zip")
	assert.ErrorIs(t, err, ErrRestoreUnsupported)
}

func TestListBackupsNewestFirst(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	require.NoError(t, os.MkdirAll(e.cfg.Dir, 0o755))
	old := filepath.Join(e.cfg.Dir, "manual-old.zip")
	recent := filepath.Join(e.cfg.Dir, "manual-new.zip")
	require.NoError(t, os.WriteFile(old, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(recent, []byte("bb"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	infos, err := e.ListBackups()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "manual-new.zip", infos[0].Filename)
	assert.Equal(t, "manual-old.zip", infos[1].Filename)
}

func TestStat(t *testing.T) {
	e := newTestEngine(t, []CollectionExporter{staticExporter("users", nil)}, nil)
	res, err := e.CreateBackup(context.Background(), KindManual)
	require.NoError(t, err)

	info, err := e.Stat(res.Filename)
	require.NoError(t, err)
	assert.Equal(t, res.Size, info.Size)

	_, err = e.Stat("nope.zip")
	assert.ErrorIs(t, err, ErrBackupNotFound)
	_, err = e.Stat("../nope.zip")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func assertNoTempDirs(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), "temp_"),
			"temp dir %s left behind", entry.Name())
	}
}
