// Command migrate imports a directory of markdown files as posts owned by
// one author. Files may start with a %%% TOML front matter block.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/logger"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var migrateLogger = zerolog.Nop()

func main() {
	path := flag.String("path", "", "directory containing .md files")
	ownerEmail := flag.String("owner", "", "email of the user who will own the posts")
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "parse the files without writing posts")
	flag.Parse()

	log := logger.New("info", logger.FormatConsole)
	migrateLogger = log
	if *path == "" || *ownerEmail == "" {
		log.Fatal().Msg("Both -path and -owner are required")
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	db.SetLogger(logger.Component(log, "db"))
	repository.SetLogger(logger.Component(log, "repository"))

	store, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer store.Close()

	n, err := run(context.Background(), store, *path, *ownerEmail, cfg.Content.ExcerptLength, *dryRun)
	if err != nil {
		log.Error().Err(err).Msg("Migration failed")
		store.Close()
		os.Exit(1)
	}
	log.Info().Int("posts", n).Bool("dry_run", *dryRun).Msg("Migration finished")
}

// run imports every readable post under path and reports how many were
// stored. A post that fails to save is logged and skipped.
func run(ctx context.Context, store db.DB, path, ownerEmail string, excerptLength int, dryRun bool) (int, error) {
	owner, err := repository.NewDBUserRepository(store).GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		return 0, err
	}

	posts, err := repository.NewFSImporter(path, owner.ID, excerptLength).ReadPosts()
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(posts), nil
	}

	repo := repository.NewDBPostRepository(store)
	saved := 0
	for i := range posts {
		post := &posts[i]
		if err := repo.CreatePost(ctx, post); err != nil {
			migrateLogger.Warn().Err(err).Str("title", post.Title).Msg("Failed to save post")
			continue
		}
		migrateLogger.Debug().Str("post_id", string(post.ID)).Str("title", post.Title).Msg("Imported post")
		saved++
	}
	return saved, nil
}

