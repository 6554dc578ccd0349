package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/blogservice"
	"github.com/zentinela/blog/internal/common"
)

const (
	adminEmail     = "admin@zentinela.com"
	adminFirstName = "Admin"
	adminLastName  = "User"
)

func main() {
	envFile := flag.String("env", ".env", "path to the .env file, empty to use the environment only")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*envFile, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(envFile string, logger *slog.Logger) error {
	cfg, err := common.LoadConfig(envFile)
	if err != nil {
		return err
	}

	db, err := common.NewDB(cfg.DB)
	if err != nil {
		return err
	}
	defer common.CloseDB(db)

	err = common.Migrate(db, cfg.DB.MigrationsPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// no fallback and strict reads: an unreachable database must not look empty
	s := blogservice.NewBlogService(db, nil, nil, blogservice.StrictReads, logger)

	existing, err := s.ListPosts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("blog posts already exist, skipping seed", slog.Int("count", len(existing)))
		return nil
	}

	authorID, err := ensureAuthor(ctx, db)
	if err != nil {
		return err
	}

	samples, err := blogservice.SamplePosts()
	if err != nil {
		return err
	}

	for _, req := range samples {
		post, err := s.CreatePost(ctx, authorID, &req)
		if err != nil {
			return err
		}
		logger.Info("seeded post", slog.String("slug", post.Slug))
	}

	logger.Info("seed complete", slog.Int("count", len(samples)))

	return nil
}

// ensureAuthor returns the first user, creating the admin author when the table is empty.
func ensureAuthor(ctx context.Context, db *sql.DB) (uuid.UUID, error) {
	var id uuid.UUID

	err := db.QueryRowContext(ctx, "SELECT id FROM users ORDER BY created_at LIMIT 1").Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO users (email, first_name, last_name)
		VALUES ($1, $2, $3)
		RETURNING id`

	err = db.QueryRowContext(ctx, query, adminEmail, adminFirstName, adminLastName).Scan(&id)
	return id, err
}
