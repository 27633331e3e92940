package main

import (
	"bufio"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"stories-client/internal/api"
	"stories-client/internal/auth"
	"stories-client/internal/composer"
	"stories-client/internal/debug"
	"stories-client/internal/effects"
	"stories-client/internal/models"
	"stories-client/internal/player"
	"stories-client/internal/realtime"
	"stories-client/internal/upload"
	"stories-client/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	godotenv.Load()

	logger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		logger.Fatal("API_URL not set")
	}

	token := os.Getenv("AUTH_TOKEN")
	if token == "" {
		logger.Fatal("AUTH_TOKEN not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	claims, err := auth.ParseToken(token, jwtSecret)
	if err != nil {
		logger.Fatal("invalid auth token", zap.Error(err))
	}
	viewerID := claims.UserID
	logger.Info("authenticated", zap.String("viewer_id", viewerID.String()), zap.String("email", claims.Email))

	client := api.NewClient(apiURL, token, logger)

	var uploader upload.Uploader
	switch {
	case os.Getenv("CDN_UPLOAD_URL") != "":
		uploader = upload.NewCDNUploader(
			os.Getenv("CDN_UPLOAD_URL"),
			os.Getenv("CDN_UPLOAD_PRESET"),
			logger,
		)
	case os.Getenv("MINIO_ENDPOINT") != "" && os.Getenv("MINIO_BUCKET") != "":
		uploader, err = upload.NewS3Uploader(
			os.Getenv("MINIO_ENDPOINT"),
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_BUCKET"),
			os.Getenv("MINIO_USE_SSL") == "true",
		)
		if err != nil {
			logger.Warn("failed to create S3 uploader, publishing disabled", zap.Error(err))
			uploader = nil
		}
	default:
		logger.Warn("no uploader configured, publishing disabled")
	}
	picker := &filePicker{}
	var comp *composer.Composer
	if uploader != nil {
		comp = composer.New(picker, uploader, client, logger)
		// Stand-in for the measured editing surface in the headless runner.
		comp.SetCanvas(390, 844)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := effects.NewDispatcher(client, logger)
	go dispatcher.Run(ctx)

	if wsURL := os.Getenv("WS_URL"); wsURL != "" {
		sub := realtime.NewSubscriber(wsURL, token, logger)
		go func() {
			if err := sub.Run(ctx); err != nil {
				logger.Warn("realtime subscription ended", zap.Error(err))
			}
		}()
		go logRealtimeEvents(sub, logger)
	} else {
		logger.Warn("WS_URL not set, running without realtime events")
	}

	var activeEngine atomic.Pointer[player.Engine]

	port := os.Getenv("PORT")
	if port == "" {
		port = "5600"
	}
	router := debug.NewRouter(client, func() *player.Engine { return activeEngine.Load() })
	srv := &http.Server{Addr: "0.0.0.0:" + port, Handler: router}
	go func() {
		logger.Info("debug server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("debug server failed", zap.Error(err))
		}
	}()
	defer srv.Shutdown(context.Background())

	groups, err := client.GetStories(ctx)
	if err != nil {
		logger.Fatal("failed to fetch stories", zap.Error(err))
	}
	logger.Info("stories fetched", zap.Int("groups", len(groups)))

	engine := player.NewEngine(groups, 0, viewerID, dispatcher, videoLog{logger}, logger)
	activeEngine.Store(engine)
	go engine.Run(ctx)
	go readCommands(ctx, engine, comp, picker, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down...")
		cancel()
		<-engine.Done()
	case <-engine.Done():
		logger.Info("playback finished")
	}
}

// readCommands maps stdin lines onto player input: n = tap left (forward),
// b = tap right (backward), p/r = press/release (hold to pause), an emoji
// from the fixed set reacts, d deletes the current story, and
// "share <file> [video-seconds]" composes and publishes a new story.
func readCommands(ctx context.Context, engine *player.Engine, comp *composer.Composer, picker *filePicker, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(cmd, "share "):
			share(ctx, comp, picker, strings.Fields(cmd)[1:], logger)
		case cmd == "n":
			engine.Press(player.LeftHalf)
			engine.Release(player.LeftHalf)
		case cmd == "b":
			engine.Press(player.RightHalf)
			engine.Release(player.RightHalf)
		case cmd == "p":
			engine.Press(player.LeftHalf)
		case cmd == "r":
			engine.Release(player.LeftHalf)
		case cmd == "d":
			engine.Delete()
		case models.IsReactionEmoji(cmd):
			engine.React(cmd)
		case cmd == "":
		default:
			logger.Info("unknown command", zap.String("command", cmd))
		}
	}
}

func share(ctx context.Context, comp *composer.Composer, picker *filePicker, args []string, logger *zap.Logger) {
	if comp == nil {
		logger.Warn("no uploader configured, cannot share")
		return
	}
	if len(args) == 0 {
		logger.Warn("share needs a file path")
		return
	}

	picker.uri = args[0]
	var err error
	if len(args) > 1 {
		secs, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			logger.Warn("invalid video duration", zap.String("value", args[1]))
			return
		}
		picker.duration = time.Duration(secs) * time.Second
		err = comp.PickVideo(ctx)
	} else {
		err = comp.PickImage(ctx)
	}
	if err != nil {
		logger.Warn("media rejected", zap.Error(err))
		return
	}

	story, err := comp.Publish(ctx)
	if err != nil {
		logger.Warn("publish failed, composition kept", zap.Error(err))
		return
	}
	logger.Info("story shared", zap.String("story_id", story.ID.String()))
}

func logRealtimeEvents(sub *realtime.Subscriber, logger *zap.Logger) {
	for event := range sub.Events() {
		switch event.Type {
		case realtime.EventStoryViewed:
			if v, err := realtime.DecodeView(event); err == nil {
				logger.Info("story viewed",
					zap.String("story_id", v.StoryID.String()),
					zap.String("viewer_id", v.ViewerID.String()))
			}
		case realtime.EventStoryReacted:
			if r, err := realtime.DecodeReaction(event); err == nil {
				logger.Info("story reacted",
					zap.String("story_id", r.StoryID.String()),
					zap.String("emoji", r.Emoji))
			}
		default:
			logger.Debug("realtime event", zap.String("type", event.Type))
		}
	}
}

// filePicker stands in for the OS gallery and camera in the headless runner:
// the share command primes it with a file path before the composer asks.
type filePicker struct {
	uri      string
	duration time.Duration
}

func (p *filePicker) PickImage(ctx context.Context) (string, error) {
	return p.uri, nil
}

func (p *filePicker) PickVideo(ctx context.Context) (string, time.Duration, error) {
	return p.uri, p.duration, nil
}

func (p *filePicker) Capture(ctx context.Context, mediaType models.MediaType) (string, time.Duration, error) {
	return p.uri, p.duration, nil
}

// videoLog stands in for the platform video resource in the headless runner.
type videoLog struct {
	logger *zap.Logger
}

func (v videoLog) Play()  { v.logger.Debug("video play") }
func (v videoLog) Pause() { v.logger.Debug("video pause") }
func (v videoLog) Stop()  { v.logger.Debug("video stop") }
