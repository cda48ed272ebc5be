package service

import (
	"context"
	"fmt"

	"github.com/templui/filesmanager/internal/repository"
)

// Pinger reports whether a backing store answers.
type Pinger interface {
	Alive(ctx context.Context) bool
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) bool

func (f PingFunc) Alive(ctx context.Context) bool { return f(ctx) }

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// AppService reports service health and totals.
type AppService struct {
	tokens   Pinger
	database Pinger
	userRepo repository.UserRepository
	fileRepo repository.FileRepository
}

func NewAppService(tokens, database Pinger, userRepo repository.UserRepository, fileRepo repository.FileRepository) *AppService {
	return &AppService{
		tokens:   tokens,
		database: database,
		userRepo: userRepo,
		fileRepo: fileRepo,
	}
}

func (s *AppService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.tokens.Alive(ctx),
		DB:    s.database.Alive(ctx),
	}
}

func (s *AppService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	files, err := s.fileRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &Stats{Users: users, Files: files}, nil
}
