package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"focus-tracker/internal/api"
	"focus-tracker/internal/idgen"
	"focus-tracker/internal/repository"
	"focus-tracker/internal/stats"
	"focus-tracker/internal/storage"
)

// ArchiveURLTTL is how long a presigned download link stays valid.
const ArchiveURLTTL = 15 * time.Minute

// ExportService produces copies of a user's data and, when object storage is
// configured, keeps them as archives.
type ExportService interface {
	Snapshot(ctx context.Context, owner string) (*api.Export, error)
	Archive(ctx context.Context, owner string) (*api.Archive, error)
	Archives(ctx context.Context, owner string) ([]storage.ObjectInfo, error)
	// Relocate moves the archives of a renamed account to its new name, so
	// the old name can be taken without inheriting them.
	Relocate(ctx context.Context, from, to string)
	// Purge removes every archive of owner. Used when the account is deleted.
	Purge(ctx context.Context, owner string)
}

type ExportConfig struct {
	KeyPrefix string
	Location  *time.Location
	Now       func() time.Time
}

type exportService struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	trackers repository.TrackerRepository
	store    storage.Service
	cfg      ExportConfig
	logger   *logrus.Logger
}

// NewExportService wires the export service. store may be nil, in which case
// archive operations return storage.ErrDisabled.
func NewExportService(users repository.UserRepository, tasks repository.TaskRepository, trackers repository.TrackerRepository, store storage.Service, cfg ExportConfig, logger *logrus.Logger) ExportService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &exportService{
		users:    users,
		tasks:    tasks,
		trackers: trackers,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *exportService) Snapshot(ctx context.Context, owner string) (*api.Export, error) {
	user, err := s.users.GetByUsername(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	tasks, err := s.tasks.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	trackers, err := s.trackers.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("export trackers: %w", err)
	}

	now := s.cfg.Now()
	return &api.Export{
		ExportedAt: now.UTC(),
		User:       api.FromUser(*sanitizeUser(user)),
		Tasks:      api.FromTasks(tasks),
		Trackers:   api.FromTrackers(trackers),
		Summary:    stats.Summarize(trackers, now, s.cfg.Location),
	}, nil
}

func (s *exportService) Archive(ctx context.Context, owner string) (*api.Archive, error) {
	if s.store == nil {
		return nil, storage.ErrDisabled
	}

	snapshot, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := path.Join(s.userPrefix(owner), idgen.NewAt(snapshot.ExportedAt)+".json")
	location, err := s.store.Put(ctx, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, ArchiveURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user": owner,
		"key":  key,
	}).Info("export archived")

	return &api.Archive{
		Key:       key,
		Location:  location,
		URL:       url,
		ExpiresAt: s.cfg.Now().Add(ArchiveURLTTL).UTC(),
	}, nil
}

func (s *exportService) Archives(ctx context.Context, owner string) ([]storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, storage.ErrDisabled
	}
	objects, err := s.store.List(ctx, s.userPrefix(owner)+"/")
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return objects, nil
}

func (s *exportService) Purge(ctx context.Context, owner string) {
	if s.store == nil {
		return
	}
	if err := s.store.DeletePrefix(ctx, s.userPrefix(owner)+"/"); err != nil {
		s.logger.WithError(err).WithField("user", owner).Warn("purge archived exports")
	}
}

func (s *exportService) Relocate(ctx context.Context, from, to string) {
	if s.store == nil || from == to {
		return
	}
	log := s.logger.WithFields(logrus.Fields{"from": from, "to": to})

	oldPrefix := s.userPrefix(from) + "/"
	objects, err := s.store.List(ctx, oldPrefix)
	if err != nil {
		log.WithError(err).Warn("list archived exports for rename")
	}

	newPrefix := s.userPrefix(to) + "/"
	for _, obj := range objects {
		dst := newPrefix + strings.TrimPrefix(obj.Key, oldPrefix)
		if err := s.store.Copy(ctx, obj.Key, dst); err != nil {
			log.WithError(err).WithField("key", obj.Key).Warn("move archived export")
		}
	}

	// the old prefix is dropped even after a failed copy: whoever registers
	// the freed name must not see these archives
	if err := s.store.DeletePrefix(ctx, oldPrefix); err != nil {
		log.WithError(err).Warn("drop archived exports under old name")
		return
	}
	if len(objects) > 0 {
		log.WithField("count", len(objects)).Info("archived exports moved")
	}
}

func (s *exportService) userPrefix(owner string) string {
	owner = url.PathEscape(owner)
	prefix := strings.Trim(s.cfg.KeyPrefix, "/")
	if prefix == "" {
		return owner
	}
	return prefix + "/" + owner
}
