package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
	"github.com/user/streambox/internal/search"
	"github.com/user/streambox/internal/utils"
)

const testSecret = "test-secret"

type testEnv struct {
	repos    *repository.Repositories
	auth     *AuthService
	profiles *ProfileService
	catalog  *CatalogService
	log      *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	idx, err := search.New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	repos := repository.NewRepositories(db)
	return &testEnv{
		repos:    repos,
		auth:     NewAuthService(repos.Account, testSecret, time.Hour, log),
		profiles: NewProfileService(repos.Profile, NewGuard(repos.Profile), log),
		catalog:  NewCatalogService(repos.Content, idx, utils.NewCache(time.Minute, time.Minute), log),
		log:      log,
	}
}

func (e *testEnv) signup(t *testing.T, email string) *model.Account {
	t.Helper()
	ctx := context.Background()
	token, err := e.auth.Register(ctx, SignupInput{Email: email, Password: "secret1"})
	require.NoError(t, err)
	id, err := e.auth.VerifySession(token)
	require.NoError(t, err)
	account, err := e.auth.ResolveAccount(ctx, id)
	require.NoError(t, err)
	return account
}

func (e *testEnv) admin(t *testing.T, email string) *model.Account {
	t.Helper()
	account := e.signup(t, email)
	_, err := e.repos.Account.SetAdmin(context.Background(), email, true)
	require.NoError(t, err)
	account.IsAdmin = true
	return account
}

func movieInput(title, genre string) ContentInput {
	return ContentInput{
		Title:        title,
		Description:  title + " description",
		ThumbnailURL: "https://img.example.com/" + title + ".jpg",
		BackdropURL:  "https://img.example.com/" + title + "-bg.jpg",
		Type:         model.KindMovie,
		Genre:        genre,
		AgeRating:    "12+",
		TrailerURL:   "https://www.youtube.com/watch?v=abc",
		VideoURL:     "https://cdn.example.com/video.mp4",
		Duration:     "2h 15m",
	}
}
