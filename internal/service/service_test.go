package service

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/tokenstore"
)

type testEnv struct {
	auth    *AuthService
	files   *FileService
	app     *AppService
	users   repository.UserRepository
	fileDB  repository.FileRepository
	storage *storage.LocalStorage
	queue   *queue.MemoryQueue
	redis   *miniredis.Miniredis
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.RunMigrations(context.Background(), database.DB, "sqlite"); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	tokens := tokenstore.NewRedisFromClient(client)

	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)
	// Root does not exist yet: the first upload creates it
	store := storage.NewLocalStorage(filepath.Join(t.TempDir(), "files_manager"))
	q := queue.NewMemoryQueue(16)

	auth := NewAuthService(users, tokens, 24*time.Hour)
	dbPing := PingFunc(func(ctx context.Context) bool { return db.Alive(ctx, database) })

	return &testEnv{
		auth:    auth,
		files:   NewFileService(files, store, q, auth),
		app:     NewAppService(tokens, dbPing, users, files),
		users:   users,
		fileDB:  files,
		storage: store,
		queue:   q,
		redis:   mr,
	}
}

func basicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func (e *testEnv) register(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), email, "toto1234!")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	token, err := e.auth.Authenticate(context.Background(), basicAuth(email, "toto1234!"))
	if err != nil {
		t.Fatalf("Authenticate(%s) failed: %v", email, err)
	}
	return token
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
