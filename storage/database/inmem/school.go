package inmemdb

import (
	"context"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// withClasses must be called with the lock held.
func (repo *schoolRepository) withClasses(s school.Settings) school.Settings {
	s.Classes = append([]school.Class{}, repo.db.tables.classes[s.ID]...)
	return s
}

func (repo *schoolRepository) GetSettings(_ context.Context, _ ...core.DBExecutor) (school.Settings, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	first := 0
	for id := range repo.db.tables.settings {
		if first == 0 || id < first {
			first = id
		}
	}
	if first == 0 {
		return school.Settings{}, school.ErrSettingsNotFound
	}
	return repo.withClasses(repo.db.tables.settings[first]), nil
}

func (repo *schoolRepository) GetSettingsBySchoolID(_ context.Context, schoolID string, _ ...core.DBExecutor) (school.Settings, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.tables.settings {
		if s.SchoolID == schoolID {
			return repo.withClasses(s), nil
		}
	}
	return school.Settings{}, school.ErrSettingsNotFound
}

func (repo *schoolRepository) CreateSettings(_ context.Context, s school.Settings, _ ...core.DBExecutor) (school.Settings, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.nextPK("settings")
	s.Classes = nil
	repo.db.tables.settings[s.ID] = s
	return repo.withClasses(s), nil
}

func (repo *schoolRepository) UpdateSettings(_ context.Context, s school.Settings, _ ...core.DBExecutor) (school.Settings, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.settings[s.ID]; !ok {
		return school.Settings{}, school.ErrSettingsNotFound
	}
	s.Classes = nil
	repo.db.tables.settings[s.ID] = s
	return repo.withClasses(s), nil
}

func (repo *schoolRepository) ReplaceClasses(_ context.Context, settingsID int, classes []school.Class, _ ...core.DBExecutor) ([]school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.settings[settingsID]; !ok {
		return nil, school.ErrSettingsNotFound
	}
	saved := make([]school.Class, 0, len(classes))
	for _, cls := range classes {
		cls.ID = repo.db.nextPK("classes")
		saved = append(saved, cls)
	}
	repo.db.tables.classes[settingsID] = saved
	return append([]school.Class{}, saved...), nil
}
