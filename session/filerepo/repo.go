// Package filerepo persists session records as one JSON file per origin,
// mirroring the per-origin isolation of browser storage partitions: a record
// written for one origin is never visible through another origin's key.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/pkg/errors"
)

var _ session.Repo = (*Repo)(nil)

// Repo stores session records under a data folder.
type Repo struct {
	folder string
}

// New creates the data folder if needed and returns a file-backed repo.
func New(folder string) (*Repo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] MkdirAll")
	}
	return &Repo{folder: folder}, nil
}

func (r *Repo) Load(origin string) (*session.Record, error) {
	data, err := os.ReadFile(r.sessionPath(origin))
	if os.IsNotExist(err) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.Load] ReadFile")
	}

	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt record is unrecoverable; treat it as absent so the
		// caller falls back to login instead of failing to start.
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *Repo) Save(origin string, record *session.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[Repo.Save] Marshal")
	}
	return errors.Wrap(r.writeAtomic(r.sessionPath(origin), data), "[Repo.Save] write")
}

func (r *Repo) Delete(origin string) error {
	err := os.Remove(r.sessionPath(origin))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Repo.Delete] Remove")
	}
	return nil
}

func (r *Repo) LoadLastTenant(origin string) (string, error) {
	data, err := os.ReadFile(r.tenantPath(origin))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "[Repo.LoadLastTenant] ReadFile")
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *Repo) SaveLastTenant(origin, subdomain string) error {
	return errors.Wrap(r.writeAtomic(r.tenantPath(origin), []byte(subdomain)), "[Repo.SaveLastTenant] write")
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated record.
func (r *Repo) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(r.folder, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func (r *Repo) sessionPath(origin string) string {
	return filepath.Join(r.folder, fileKey(origin)+".session.json")
}

func (r *Repo) tenantPath(origin string) string {
	return filepath.Join(r.folder, fileKey(origin)+".tenant")
}

// fileKey makes an origin safe to use as a filename.
func fileKey(origin string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_")
	return replacer.Replace(origin)
}
