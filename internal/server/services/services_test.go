package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/dbx"
	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/models"
	"github.com/mkorolis/studyvault/internal/server/repositories/files"
	"github.com/mkorolis/studyvault/internal/server/repositories/projects"
	"github.com/mkorolis/studyvault/internal/server/repositories/refreshtokens"
	"github.com/mkorolis/studyvault/internal/server/repositories/users"
)

// --- in-memory repositories shared by the service tests ---

func testLogger() logging.Logger {
	return logging.NewZerologLogger(zerolog.Nop())
}

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	stored := &models.User{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		UserName:     u.UserName,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.byName[u.UserName] = stored
	return stored, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken

	createErr error
	findErr   error
	deleteErr error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byToken: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.byToken[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byToken, token)
	return nil
}

type fakeProjectsRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.Project
	nextID int

	createErr error
	deleteErr error
}

func newFakeProjectsRepo() *fakeProjectsRepo {
	return &fakeProjectsRepo{byID: map[string]*models.Project{}}
}

func (f *fakeProjectsRepo) add(ownerID, name string) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &models.Project{ID: fmt.Sprintf("project-%d", f.nextID), OwnerID: ownerID, Name: name, CreatedAt: time.Now()}
	f.byID[p.ID] = p
	return p
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = fmt.Sprintf("project-%d", f.nextID)
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProjectsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Project
	for _, p := range f.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeFilesRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.FileRecord
	nextID int

	createErr error
	deleteErr error
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{byID: map[string]*models.FileRecord{}}
}

func (f *fakeFilesRepo) Create(ctx context.Context, rec *models.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	rec.ID = fmt.Sprintf("file-%d", f.nextID)
	rec.CreatedAt = time.Now()
	stored := *rec
	f.byID[rec.ID] = &stored
	return nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (f *fakeFilesRepo) ListByProject(ctx context.Context, projectID string) ([]*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FileRecord
	for _, rec := range f.byID {
		if rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFilesRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeRepoManager vends the in-memory repositories regardless of the DBTX
// handed to it, so services can be exercised with a nil or sqlmock database.
type fakeRepoManager struct {
	users    *fakeUsersRepo
	refresh  *fakeRefreshRepo
	projects *fakeProjectsRepo
	files    *fakeFilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsersRepo(),
		refresh:  newFakeRefreshRepo(),
		projects: newFakeProjectsRepo(),
		files:    newFakeFilesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.users }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.refresh }

func (m *fakeRepoManager) Projects(db dbx.DBTX) projects.Repository { return m.projects }

func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository { return m.files }
