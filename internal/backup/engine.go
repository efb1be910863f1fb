// Package backup produces point-in-time archives of the database plus
// uploaded files, on demand or on a schedule, and manages the archive
// files on disk.  The backups directory itself is the source of truth
// for what exists: listing is a directory read, not a database index.
package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
)

// Backup kinds encoded into archive filenames.
const (
	KindManual    = "manual"
	KindScheduled = "scheduled"
)

// ErrInvalidFilename is returned for filenames carrying traversal
// sequences.  Rejected before any filesystem access, distinct from
// "not found".
var ErrInvalidFilename = errors.New("invalid backup filename")

// ErrBackupNotFound is returned when a well-formed filename matches
// no archive on disk.
var ErrBackupNotFound = errors.New("backup not found")

// ErrRestoreUnsupported is returned for any restore attempt.  Restore
// is not implemented and must never be attempted partially.
var ErrRestoreUnsupported = errors.New("restore not supported")

// Config holds backup engine configuration.
type Config struct {
	Dir         string        // output directory for archives
	UploadsDir  string        // uploaded files bundled into archives; missing dir is not an error
	DumpCommand string        // external dump tool (default mysqldump)
	DumpArgs    []string      // connection arguments passed to the dump tool
	DumpTimeout time.Duration // how long a dump-tool run may take; timeout counts as tool failure
}

// AuditSink records system actions taken by the engine.
type AuditSink interface {
	RecordSystemAction(ctx context.Context, action, resource, details string) error
}

// Result reports a completed backup.
type Result struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Info describes one archive on disk.
type Info struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Engine creates, lists and deletes backup archives.  Concurrent
// CreateBackup calls are not serialized: each run works in its own
// timestamp+uuid temp directory, so parallel runs never collide on
// disk even though they compete for the dump tool.
type Engine struct {
	cfg       Config
	exporters []CollectionExporter
	audit     AuditSink

	now func() time.Time // injectable clock for tests
}

// New constructs an Engine.  exporters is the closed set of
// collections the JSON fallback covers; audit may be nil.
func New(cfg Config, exporters []CollectionExporter, audit AuditSink) *Engine {
	return &Engine{cfg: cfg, exporters: exporters, audit: audit, now: time.Now}
}

// CreateBackup dumps the database, archives it together with the
// uploads directory and moves the finished zip into the backups
// directory.  The temp working directory is removed on every exit
// path, success or failure, so a failed run leaves neither partial
// archives nor orphaned temp directories behind.
func (e *Engine) CreateBackup(ctx context.Context, kind string) (Result, error) {
	ts := e.now().UTC().Format("2006-01-02T15-04-05Z")

	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create backup dir: %w", err)
	}
	tempDir := filepath.Join(e.cfg.Dir, fmt.Sprintf("temp_%s_%s", ts, uuid.NewString()[:8]))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dumpDir := filepath.Join(tempDir, "dump")
	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create dump dir: %w", err)
	}

	method := "dump-tool"
	var skipped []string
	if err := e.runDumpTool(ctx, dumpDir); err != nil {
		log.Printf("backup: dump tool failed, falling back to JSON export: %v", err)
		method = "json-export"
		var exported int
		skipped, exported = e.exportJSON(ctx, dumpDir)
		if exported == 0 {
			return Result{}, fmt.Errorf("dump tool failed and JSON fallback exported nothing")
		}
	}

	// Build the zip inside the temp dir and only move it into the
	// backups directory once the stream closed cleanly, so a failed
	// run never materializes a partial archive.
	filename := fmt.Sprintf("%s-%s.zip", kind, ts)
	stagedZip := filepath.Join(tempDir, filename)
	if err := e.writeArchive(stagedZip, dumpDir); err != nil {
		return Result{}, fmt.Errorf("write archive: %w", err)
	}
	finalPath := filepath.Join(e.cfg.Dir, filename)
	if err := os.Rename(stagedZip, finalPath); err != nil {
		return Result{}, fmt.Errorf("move archive: %w", err)
	}
	st, err := os.Stat(finalPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat archive: %w", err)
	}

	if e.audit != nil {
		details := fmt.Sprintf("kind=%s method=%s size=%d", kind, method, st.Size())
		if len(skipped) > 0 {
			details += " skipped=" + strings.Join(skipped, ",")
		}
		if err := e.audit.RecordSystemAction(ctx, "backup.created", filename, details); err != nil {
			log.Printf("backup: audit write failed: %v", err)
		}
	}
	return Result{Filename: filename, Size: st.Size()}, nil
}

// runDumpTool shells out to the configured dump tool, writing the
// dump into dir.  A missing binary, a non-zero exit or a timeout all
// count as dump-tool failure and trigger the JSON fallback.
func (e *Engine) runDumpTool(ctx context.Context, dir string) error {
	tool := e.cfg.DumpCommand
	if tool == "" {
		tool = "mysqldump"
	}
	timeout := e.cfg.DumpTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{}, e.cfg.DumpArgs...)
	args = append(args, "--result-file="+filepath.Join(dir, "dump.sql"))
	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %v: %s", tool, err, msg)
		}
		return fmt.Errorf("%s: %w", tool, err)
	}
	return nil
}

// exportJSON writes one JSON file per collection into dir.  Each
// collection is tried independently: a failed export is logged and
// skipped so one broken collection does not abort the backup.
func (e *Engine) exportJSON(ctx context.Context, dir string) (skipped []string, exported int) {
	for _, ex := range e.exporters {
		docs, err := ex.ExportAll(ctx)
		if err != nil {
			log.Printf("backup: export %s failed, skipping: %v", ex.Name(), err)
			skipped = append(skipped, ex.Name())
			continue
		}
		b, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			log.Printf("backup: marshal %s failed, skipping: %v", ex.Name(), err)
			skipped = append(skipped, ex.Name())
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, ex.Name()+".json"), b, 0o644); err != nil {
			log.Printf("backup: write %s failed, skipping: %v", ex.Name(), err)
			skipped = append(skipped, ex.Name())
			continue
		}
		exported++
	}
	return skipped, exported
}

// writeArchive zips the dump directory under database/ plus the
// uploads directory (when present) under uploads/ into dst, using
// Deflate at best compression.
func (e *Engine) writeArchive(dst, dumpDir string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	err = addTree(zw, dumpDir, "database")
	if err == nil && e.cfg.UploadsDir != "" {
		if st, statErr := os.Stat(e.cfg.UploadsDir); statErr == nil && st.IsDir() {
			err = addTree(zw, e.cfg.UploadsDir, "uploads")
		}
	}
	if err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// addTree copies every regular file under root into the zip beneath
// prefix, preserving relative paths.
func addTree(zw *zip.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(prefix + "/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
}

// ListBackups returns the archives on disk, newest first.  The
// listing is derived from the directory plus stat so it reflects disk
// truth even if the audit log is incomplete.
func (e *Engine) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(e.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		st, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Filename: entry.Name(), Size: st.Size(), CreatedAt: st.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Path validates name against traversal and resolves it inside the
// backups directory.  No filesystem access happens before validation.
func (e *Engine) Path(name string) (string, error) {
	if !validFilename(name) {
		return "", ErrInvalidFilename
	}
	return filepath.Join(e.cfg.Dir, name), nil
}

// Stat returns the Info for one archive or ErrBackupNotFound.
func (e *Engine) Stat(name string) (Info, error) {
	path, err := e.Path(name)
	if err != nil {
		return Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrBackupNotFound
		}
		return Info{}, err
	}
	return Info{Filename: name, Size: st.Size(), CreatedAt: st.ModTime()}, nil
}

// DeleteBackup removes one archive and writes an audit entry.
func (e *Engine) DeleteBackup(ctx context.Context, name string) error {
	path, err := e.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}
	if e.audit != nil {
		if err := e.audit.RecordSystemAction(ctx, "backup.deleted", name, ""); err != nil {
			log.Printf("backup: audit write failed: %v", err)
		}
	}
	return nil
}

// RestoreBackup always fails: restore is intentionally unimplemented
// and must never run partially.
func (e *Engine) RestoreBackup(ctx context.Context, name string) error {
	return ErrRestoreUnsupported
}

func validFilename(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return true
}
