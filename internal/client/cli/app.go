package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mkorolis/studyvault/internal/client/api"
	"github.com/mkorolis/studyvault/internal/client/config"
	"github.com/mkorolis/studyvault/internal/client/uploader"
)

// backend is the slice of the API client the command handlers use.
// The real api.Client satisfies it; tests provide a stub.
type backend interface {
	IsLoggedIn() bool
	Logout()
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	ListProjects(ctx context.Context) ([]api.Project, error)
	CreateProject(ctx context.Context, name string) (*api.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	ListFiles(ctx context.Context, projectID string) ([]api.File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// transfer moves file contents between local disk and the server.
type transfer interface {
	UploadFile(ctx context.Context, projectID, path string, onProgress uploader.ProgressFunc) (*api.File, error)
	DownloadFile(ctx context.Context, fileID, destPath string) (*api.File, error)
}

type App struct {
	config   *config.Config
	api      backend
	transfer transfer
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	client := api.New(c.ServerURL, c.MaxAttempts, c.RetryBaseDelay)
	return &App{
		config:   c,
		api:      client,
		transfer: uploader.New(client),
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.IsLoggedIn()
}

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s)", a.userName)
	}
	return ""
}

func (a *App) Run(ctx context.Context) {
	log.Println("Welcome to StudyVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
