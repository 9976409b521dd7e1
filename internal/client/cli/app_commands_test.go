package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mkorolis/studyvault/internal/client/api"
	"github.com/mkorolis/studyvault/internal/client/uploader"
)

func stubInputs(t *testing.T, lines []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		line := lines[i]
		i++
		return line, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeBackend struct {
	loggedIn bool

	regUser, regPass     string
	loginUser, loginPass string
	loginErr             error

	projects []api.Project
	files    []api.File

	createdName    string
	deletedProject string
	deletedFile    string
}

func (f *fakeBackend) IsLoggedIn() bool { return f.loggedIn }
func (f *fakeBackend) Logout()          { f.loggedIn = false }
func (f *fakeBackend) Register(_ context.Context, user, pass string) error {
	f.regUser, f.regPass = user, pass
	return nil
}
func (f *fakeBackend) Login(_ context.Context, user, pass string) error {
	f.loginUser, f.loginPass = user, pass
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = true
	return nil
}
func (f *fakeBackend) ListProjects(context.Context) ([]api.Project, error) {
	return f.projects, nil
}
func (f *fakeBackend) CreateProject(_ context.Context, name string) (*api.Project, error) {
	f.createdName = name
	return &api.Project{ID: "p1", Name: name, CreatedAt: time.Now()}, nil
}
func (f *fakeBackend) DeleteProject(_ context.Context, id string) error {
	f.deletedProject = id
	return nil
}
func (f *fakeBackend) ListFiles(_ context.Context, projectID string) ([]api.File, error) {
	return f.files, nil
}
func (f *fakeBackend) DeleteFile(_ context.Context, id string) error {
	f.deletedFile = id
	return nil
}

type fakeTransfer struct {
	uploadProject, uploadPath string
	downloadID, downloadDest  string
	uploadErr                 error
}

func (f *fakeTransfer) UploadFile(_ context.Context, projectID, path string, onProgress uploader.ProgressFunc) (*api.File, error) {
	f.uploadProject, f.uploadPath = projectID, path
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if onProgress != nil {
		onProgress(1, 1)
	}
	return &api.File{ID: "f1", Name: "doc.txt", Size: 3}, nil
}
func (f *fakeTransfer) DownloadFile(_ context.Context, fileID, destPath string) (*api.File, error) {
	f.downloadID, f.downloadDest = fileID, destPath
	return &api.File{ID: fileID, Name: "doc.txt", Size: 3}, nil
}

func newTestApp(b *fakeBackend, tr *fakeTransfer) *App {
	return &App{api: b, transfer: tr}
}

func TestRegister_PassesCredentials(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"alice"}, []byte("secret"))

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if b.regUser != "alice" || b.regPass != "secret" {
		t.Fatalf("credentials mismatch: %q %q", b.regUser, b.regPass)
	}
}

func TestLogin_SetsUserName(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"alice"}, []byte("secret"))

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if a.userName != "alice" {
		t.Fatalf("userName not set: %q", a.userName)
	}
	if a.getStatus() != "(alice)" {
		t.Fatalf("status mismatch: %q", a.getStatus())
	}
}

func TestLogin_ErrorLeavesUserNameEmpty(t *testing.T) {
	b := &fakeBackend{loginErr: errors.New("unauthorized")}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"alice"}, []byte("wrong"))

	if err := a.Login(context.Background()); err == nil {
		t.Fatalf("want login error")
	}
	if a.userName != "" {
		t.Fatalf("userName set on failed login: %q", a.userName)
	}
}

func TestLogout_ClearsState(t *testing.T) {
	b := &fakeBackend{loggedIn: true}
	a := newTestApp(b, &fakeTransfer{})
	a.userName = "alice"

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if a.isLoggedIn() || a.userName != "" {
		t.Fatalf("state not cleared")
	}
}

func TestNewProject(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"Thesis"}, nil)

	if err := a.NewProject(context.Background()); err != nil {
		t.Fatalf("NewProject err: %v", err)
	}
	if b.createdName != "Thesis" {
		t.Fatalf("created name mismatch: %q", b.createdName)
	}
}

func TestRemoveProject(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"p1"}, nil)

	if err := a.RemoveProject(context.Background()); err != nil {
		t.Fatalf("RemoveProject err: %v", err)
	}
	if b.deletedProject != "p1" {
		t.Fatalf("deleted project mismatch: %q", b.deletedProject)
	}
}

func TestUpload_PassesProjectAndPath(t *testing.T) {
	tr := &fakeTransfer{}
	a := newTestApp(&fakeBackend{}, tr)

	stubInputs(t, []string{"p1", "/tmp/doc.txt"}, nil)

	if err := a.Upload(context.Background()); err != nil {
		t.Fatalf("Upload err: %v", err)
	}
	if tr.uploadProject != "p1" || tr.uploadPath != "/tmp/doc.txt" {
		t.Fatalf("upload args mismatch: %q %q", tr.uploadProject, tr.uploadPath)
	}
}

func TestUpload_ErrorPropagates(t *testing.T) {
	tr := &fakeTransfer{uploadErr: errors.New("part 2 failed")}
	a := newTestApp(&fakeBackend{}, tr)

	stubInputs(t, []string{"p1", "/tmp/doc.txt"}, nil)

	if err := a.Upload(context.Background()); err == nil {
		t.Fatalf("want upload error")
	}
}

func TestDownload(t *testing.T) {
	tr := &fakeTransfer{}
	a := newTestApp(&fakeBackend{}, tr)

	stubInputs(t, []string{"f1", "/tmp/out.txt"}, nil)

	if err := a.Download(context.Background()); err != nil {
		t.Fatalf("Download err: %v", err)
	}
	if tr.downloadID != "f1" || tr.downloadDest != "/tmp/out.txt" {
		t.Fatalf("download args mismatch: %q %q", tr.downloadID, tr.downloadDest)
	}
}

func TestRemoveFile(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(b, &fakeTransfer{})

	stubInputs(t, []string{"f1"}, nil)

	if err := a.RemoveFile(context.Background()); err != nil {
		t.Fatalf("RemoveFile err: %v", err)
	}
	if b.deletedFile != "f1" {
		t.Fatalf("deleted file mismatch: %q", b.deletedFile)
	}
}
