package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/api"
	"github.com/slipstream/posterd/internal/config"
	"github.com/slipstream/posterd/internal/database"
	"github.com/slipstream/posterd/internal/health"
	"github.com/slipstream/posterd/internal/logger"
	"github.com/slipstream/posterd/internal/matchcache"
	"github.com/slipstream/posterd/internal/metadata/anilist"
	"github.com/slipstream/posterd/internal/metadata/comicvine"
	"github.com/slipstream/posterd/internal/metadata/deezer"
	"github.com/slipstream/posterd/internal/metadata/fanart"
	"github.com/slipstream/posterd/internal/metadata/googlebooks"
	"github.com/slipstream/posterd/internal/metadata/igdb"
	"github.com/slipstream/posterd/internal/metadata/omdb"
	"github.com/slipstream/posterd/internal/metadata/tmdb"
	"github.com/slipstream/posterd/internal/metadata/tvdb"
	"github.com/slipstream/posterd/internal/metadata/tvmaze"
	"github.com/slipstream/posterd/internal/metrics"
	"github.com/slipstream/posterd/internal/poster"
	"github.com/slipstream/posterd/internal/posterqueue"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/scheduler"
	"github.com/slipstream/posterd/internal/scheduler/tasks"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: cfg.Logging.BufferSize,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting posterd")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	for _, dir := range []string{cfg.Artwork.Dir, cfg.Retro.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLog := &log.Logger
	conn := db.Conn()
	clock := clockwork.NewRealClock()

	tmdbClient := tmdb.NewClient(cfg.Metadata.TMDB, log.Logger)
	tvdbClient := tvdb.NewClient(cfg.Metadata.TVDB, log.Logger)
	omdbClient := omdb.NewClient(cfg.Metadata.OMDB, log.Logger)
	tvmazeClient := tvmaze.NewClient(cfg.Metadata.TVMaze, log.Logger)
	igdbClient := igdb.NewClient(cfg.Metadata.IGDB, log.Logger)
	anilistClient := anilist.NewClient(cfg.Metadata.AniList, log.Logger)
	deezerClient := deezer.NewClient(cfg.Metadata.Deezer, log.Logger)
	booksClient := googlebooks.NewClient(cfg.Metadata.GoogleBooks, log.Logger)
	comicvineClient := comicvine.NewClient(cfg.Metadata.ComicVine, log.Logger)
	fanartClient := fanart.NewClient(cfg.Metadata.Fanart, log.Logger)

	providers := poster.Providers{
		TMDB:        tmdbClient,
		TVDB:        tvdbClient,
		OMDB:        omdbClient,
		TVMaze:      tvmazeClient,
		IGDB:        igdbClient,
		AniList:     anilistClient,
		Deezer:      deezerClient,
		GoogleBooks: booksClient,
		ComicVine:   comicvineClient,
		Fanart:      fanartClient,
	}

	releases := release.NewStore(conn, appLog)
	activitySvc := activity.NewService(conn, appLog)
	cache := matchcache.New(conn, appLog, clock)
	artwork := poster.NewArtworkStore(poster.ArtworkConfig{
		Dir:      cfg.Artwork.Dir,
		Timeout:  time.Duration(cfg.Artwork.DownloadTimeout) * time.Second,
		MaxBytes: cfg.Artwork.MaxBytes,
	}, log.Logger)
	posters := poster.NewService(releases, cache, artwork, providers, activitySvc, poster.Config{
		PreferredLanguage: cfg.Artwork.PreferredLanguage,
		FailureReasonMax:  cfg.Worker.FailureReasonMax,
	}, appLog)

	queue := posterqueue.NewQueue(cfg.Worker.QueueCapacity)

	var wg sync.WaitGroup
	if cfg.Worker.Enabled {
		worker := posterqueue.NewWorker(queue, posters, releases, artwork, activitySvc,
			posterqueue.NewConfig(cfg.Worker), clock, appLog)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	} else {
		log.Warn().Msg("poster worker disabled, queued jobs will not be processed")
	}

	sched, err := scheduler.New(appLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	retro := tasks.NewRetroFetch(releases, queue, activitySvc, cfg.Retro, clock, appLog)
	if err := tasks.RegisterRetroFetchTask(sched, retro); err != nil {
		log.Fatal().Err(err).Msg("failed to register retro fetch task")
	}
	if err := tasks.RegisterActivityCleanupTask(sched, activitySvc, cfg.Activity); err != nil {
		log.Fatal().Err(err).Msg("failed to register activity cleanup task")
	}
	sched.Start(ctx)

	healthSvc := health.NewService(conn,
		[]health.Folder{
			{Name: "posters", Path: cfg.Artwork.Dir},
			{Name: "retro", Path: cfg.Retro.Dir},
		},
		[]health.Provider{
			tmdbClient, tvdbClient, omdbClient, tvmazeClient, igdbClient,
			anilistClient, deezerClient, booksClient, comicvineClient, fanartClient,
		},
		queue, cfg.Worker.QueueCapacity, appLog)

	server := api.NewServer(api.Deps{
		Releases:  releases,
		Posters:   posters,
		Queue:     queue,
		Activity:  activitySvc,
		Health:    healthSvc,
		Scheduler: sched,
		Logs:      log,
	}, appLog)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}
	wg.Wait()

	if n := queue.ClearPending(); n > 0 {
		log.Info().Int("dropped", n).Msg("discarded pending poster jobs")
	}

	log.Info().Msg("server stopped")
}
