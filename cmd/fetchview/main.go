// Command fetchview loads a URL in the background and prints what it got, the way a screen shows
// the page it asked for. With redis configured it keeps running, loading queued requests one at a
// time and mirroring the displayed result into redis. SIGINT or SIGTERM tears it down; a load
// still in flight at that point is cancelled and never shown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	fetcher "github.com/spacemagneto/fetch-task"
	"github.com/spacemagneto/fetch-task/internal/config"
)

func main() {
	if err := initEnv(); err != nil {
		bootstrap := zerolog.New(os.Stderr)
		bootstrap.Fatal().Err(err).Msg("Failed to load .env file")
	}

	cfg := config.Load()
	logger := initLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled() {
		tp, err := initTracing(ctx, cfg.Fetch.OTLPEndpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Failed to flush traces")
			}
		}()
	}

	loop := fetcher.NewEventLoop(fetcher.WithLoopLogger(logger))

	task, err := fetcher.NewTask(
		fetcher.WithExecutor(loop),
		fetcher.WithLogger(logger),
		fetcher.WithTimeout(cfg.Fetch.Timeout),
		fetcher.WithUserAgent(cfg.Fetch.UserAgent),
		fetcher.WithMaxBodySize(cfg.Fetch.MaxBodyBytes),
		fetcher.WithTracing(cfg.TracingEnabled()),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create fetch task")
	}

	views := fetcher.MultiView{fetcher.NewWriterView(os.Stdout)}

	var inbox *fetcher.RedisInbox
	if cfg.RedisEnabled() {
		rdb, err := initRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		defer rdb.Close()

		view, err := fetcher.NewRedisView(rdb, cfg.Redis.ViewKey, cfg.Redis.ViewTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create redis view")
		}
		views = append(views, view)

		inbox, err = fetcher.NewRedisInbox(fetcher.WithClient(rdb), fetcher.WithInboxLogger(logger))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create redis inbox")
		}

		logger.Info().Str("addr", cfg.Redis.Addr).Str("inbox", cfg.Redis.InboxKey).Msg("Serving requests from redis")
	} else {
		// A single load: tear down as soon as its result has been shown.
		views = append(views, fetcher.ViewFunc(func(context.Context, fetcher.Record) error {
			stop()
			return nil
		}))
	}

	session := fetcher.NewSession(task, views, logger)

	if inbox != nil {
		go pollInbox(ctx, logger, loop, session, inbox, cfg.Redis)
	} else {
		loop.Post(func() {
			if _, err := session.Load(fetcher.NewFetchRequest(cfg.Fetch.URL)); err != nil {
				logger.Err(err).Msg("Failed to start load")
			}
		})
	}

	// The main goroutine is the home context: the loop runs here and teardown happens here after it.
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Err(err).Msg("Event loop stopped")
	}

	loop.Close()
	_ = session.Close()

	logger.Info().Msg("Shut down")
}

// pollInbox feeds queued requests to the session, one at a time: a new request is pulled only
// while the session has no load pending.
func pollInbox(ctx context.Context, logger zerolog.Logger, loop *fetcher.EventLoop, session *fetcher.Session, inbox fetcher.Inbox, cfg config.RedisConfig) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var busy bool
		if err := loop.Invoke(ctx, func() { busy = session.Busy() }); err != nil {
			return
		}
		if busy {
			continue
		}

		reqs, err := inbox.Pull(ctx, cfg.InboxKey)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to pull requests")
			continue
		}

		for _, req := range reqs {
			err := loop.Invoke(ctx, func() {
				if _, loadErr := session.Load(req); loadErr != nil {
					logger.Err(loadErr).Str("url", req.URL).Msg("Failed to start load")
				}
			})
			if err != nil {
				return
			}
		}
	}
}
