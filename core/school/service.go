package school

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/ada/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrSettingsNotFound     = errors.New("school settings not configured")
	ErrClassNotFound        = errors.New("class not found in school settings")
	ErrUnknownTransportTier = errors.New("unknown transport type")
)

type (
	Repository interface {
		// GetSettings returns the first settings row with its classes.
		GetSettings(ctx context.Context, exec ...core.DBExecutor) (Settings, error)
		GetSettingsBySchoolID(ctx context.Context, schoolID string, exec ...core.DBExecutor) (Settings, error)
		CreateSettings(ctx context.Context, s Settings, exec ...core.DBExecutor) (Settings, error)
		UpdateSettings(ctx context.Context, s Settings, exec ...core.DBExecutor) (Settings, error)
		// ReplaceClasses deletes the classes of the settings and creates the given ones.
		ReplaceClasses(ctx context.Context, settingsID int, classes []Class, exec ...core.DBExecutor) ([]Class, error)
	}

	// Cache keeps the settings close: they are read on most requests and rarely written.
	Cache interface {
		GetSettings(ctx context.Context) (Settings, bool)
		SetSettings(ctx context.Context, s Settings)
		DeleteSettings(ctx context.Context)
	}

	Service struct {
		repo  Repository
		txr   core.Transactor
		cache Cache
	}
)

type nopCache struct{}

func (nopCache) GetSettings(context.Context) (Settings, bool) { return Settings{}, false }
func (nopCache) SetSettings(context.Context, Settings)        {}
func (nopCache) DeleteSettings(context.Context)               {}

// NewService creates the settings service. A nil cache disables caching.
func NewService(repo Repository, txr core.Transactor, cache Cache) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{repo: repo, txr: txr, cache: cache}
}

// Get returns the school settings or ErrSettingsNotFound.
func (svc *Service) Get(ctx context.Context, exec ...core.DBExecutor) (Settings, error) {
	// a transaction must see its own writes
	if len(exec) == 0 {
		if s, ok := svc.cache.GetSettings(ctx); ok {
			return s, nil
		}
	}
	s, err := svc.repo.GetSettings(ctx, exec...)
	if err != nil {
		return Settings{}, err
	}
	if len(exec) == 0 {
		svc.cache.SetSettings(ctx, s)
	}
	return s, nil
}

// Save creates or updates the settings of s.SchoolID and replaces its classes.
func (svc *Service) Save(ctx context.Context, s Settings) (Settings, error) {
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	var saved Settings
	err := svc.txr.WithinTx(ctx, func(exec core.DBExecutor) error {
		now := NowFunc().UTC()
		existing, err := svc.repo.GetSettingsBySchoolID(ctx, s.SchoolID, exec)
		switch err {
		case nil:
			s.ID = existing.ID
			s.CreatedAt = existing.CreatedAt
			s.UpdatedAt = now
			saved, err = svc.repo.UpdateSettings(ctx, s, exec)
		case ErrSettingsNotFound:
			s.CreatedAt, s.UpdatedAt = now, now
			saved, err = svc.repo.CreateSettings(ctx, s, exec)
		}
		if err != nil {
			return err
		}

		saved.Classes, err = svc.repo.ReplaceClasses(ctx, saved.ID, s.Classes, exec)
		return err
	})
	if err != nil {
		return Settings{}, err
	}
	svc.cache.DeleteSettings(ctx)
	return saved, nil
}

// FeeStructure returns the classes sorted by name with the transport fees.
func (svc *Service) FeeStructure(ctx context.Context) (FeeStructure, error) {
	s, err := svc.Get(ctx)
	if err != nil {
		return FeeStructure{}, err
	}
	return s.FeeStructure(), nil
}
