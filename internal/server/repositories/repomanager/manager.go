package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkorolis/studyvault/internal/dbx"
	"github.com/mkorolis/studyvault/internal/server/repositories/files"
	"github.com/mkorolis/studyvault/internal/server/repositories/projects"
	"github.com/mkorolis/studyvault/internal/server/repositories/refreshtokens"
	"github.com/mkorolis/studyvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Projects(db dbx.DBTX) projects.Repository
	Files(db dbx.DBTX) files.Repository
}
