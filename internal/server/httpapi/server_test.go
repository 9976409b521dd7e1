package httpapi

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/dbx"
	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/models"
	"github.com/mkorolis/studyvault/internal/server/objectstore"
	"github.com/mkorolis/studyvault/internal/server/repositories/files"
	"github.com/mkorolis/studyvault/internal/server/repositories/projects"
	"github.com/mkorolis/studyvault/internal/server/repositories/refreshtokens"
	"github.com/mkorolis/studyvault/internal/server/repositories/users"
	"github.com/mkorolis/studyvault/internal/server/services"
)

// In-memory repositories backing the HTTP tests. They ignore the DBTX they
// are vended with, so the services run without a database.

type memRepos struct {
	mu       sync.Mutex
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	projects map[string]*models.Project
	files    map[string]*models.FileRecord
	nextID   int
}

func newMemRepos() *memRepos {
	return &memRepos{
		users:    map[string]*models.User{},
		tokens:   map[string]*models.RefreshToken{},
		projects: map[string]*models.Project{},
		files:    map[string]*models.FileRecord{},
	}
}

func (m *memRepos) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memRepos) Users(dbx.DBTX) users.Repository                 { return (*memUsers)(m) }
func (m *memRepos) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return (*memTokens)(m) }
func (m *memRepos) Projects(dbx.DBTX) projects.Repository           { return (*memProjects)(m) }
func (m *memRepos) Files(dbx.DBTX) files.Repository                 { return (*memFiles)(m) }

type memUsers memRepos

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := &models.User{ID: (*memRepos)(m).id("user"), UserName: u.UserName, PasswordHash: u.PasswordHash, CreatedAt: time.Now()}
	m.users[u.UserName] = stored
	return stored, nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memTokens memRepos

func (m *memTokens) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (m *memTokens) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type memProjects memRepos

func (m *memProjects) Create(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = (*memRepos)(m).id("project")
	p.CreatedAt = time.Now()
	m.projects[p.ID] = p
	return nil
}

func (m *memProjects) GetByID(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (m *memProjects) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Project
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.projects, id)
	return nil
}

type memFiles memRepos

func (m *memFiles) Create(ctx context.Context, rec *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = (*memRepos)(m).id("file")
	rec.CreatedAt = time.Now()
	stored := *rec
	m.files[rec.ID] = &stored
	return nil
}

func (m *memFiles) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (m *memFiles) ListByProject(ctx context.Context, projectID string) ([]*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.FileRecord
	for _, rec := range m.files {
		if rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memFiles) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.files, id)
	return nil
}

// testServer wires a Server against in-memory repositories and object store.
// The sqlmock database only serves transaction begin/commit during refresh
// token rotation; the repositories never touch it.
type testServer struct {
	srv    *Server
	store  *objectstore.Memory
	repos  *memRepos
	dbMock sqlmock.Sqlmock
}

func newTestServer(strategy string) *testServer {
	db, dbMock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}

	repos := newMemRepos()
	store := objectstore.NewMemory()
	logger := logging.NewZerologLogger(zerolog.Nop())

	reasm, rerr := services.NewReassembler(strategy, store, logger)
	if rerr != nil {
		panic(rerr)
	}

	cfg := services.UploadSettings{
		ChunkSize:      5,
		Threshold:      8,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		AttemptTimeout: time.Second,
		PresignExpiry:  time.Minute,
	}

	fileSvc := services.NewFileService(db, repos, store, reasm, cfg, logger)
	projectSvc := services.NewProjectService(db, repos, fileSvc, logger)
	userSvc := services.NewUserService(db, repos, "test-secret", time.Hour, 2*time.Hour)

	return &testServer{
		srv:    New(":0", zerolog.Nop(), userSvc, projectSvc, fileSvc),
		store:  store,
		repos:  repos,
		dbMock: dbMock,
	}
}
