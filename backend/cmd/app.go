package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ragnarcam/server/backend/iceconf"
	"github.com/ragnarcam/server/backend/registry"
	httpServer "github.com/ragnarcam/server/backend/server/http"
	websocketServer "github.com/ragnarcam/server/backend/server/websocket"
	"github.com/ragnarcam/server/backend/service"
	"github.com/ragnarcam/server/backend/storage/clips"
	store "github.com/ragnarcam/server/backend/storage/memory"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	var (
		apiListenAddr = fs.StringP("api-listen-addr", "a", ":8080", "api listen address")
		wsListenAddr  = fs.StringP("ws-listen-addr", "w", ":8888", "websocket signaling listen address")
		logLevel      = fs.StringP("log-level", "l", "debug", "log level")
		fixedRoom     = fs.StringP("room", "r", "", "pin all connections to this room (overrides client-declared rooms)")
		clipsDir      = fs.StringP("clips-dir", "c", "./clips", "directory for recorded clips")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	room := *fixedRoom
	if room == "" {
		// deployment contract: ROOM_ID (or ROOM) pins the room
		if room = os.Getenv("ROOM_ID"); room == "" {
			room = os.Getenv("ROOM")
		}
	}

	clipStore, err := clips.NewFileStore(*clipsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init clip store")
	}

	svc := service.NewService(service.Config{
		RoomStore: store.NewMemStore(),
		Registry:  registry.New(),
		Policy:    service.NewRoomPolicy(room),
		Logger:    &logger,
	})
	httpSrv := httpServer.NewServer(httpServer.Config{
		Logger:     &logger,
		ClipStore:  clipStore,
		ICEServers: iceconf.FromEnv(),
		FixedRoom:  room,
		ListenAddr: *apiListenAddr,
	})
	wsSrv := websocketServer.NewServer(websocketServer.Config{
		Logger:           &logger,
		SignalingService: svc,
		ListenAddr:       *wsListenAddr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		wg   = &sync.WaitGroup{}
		errc = make(chan error, 2)
	)
	wg.Add(2)
	go httpSrv.Run(ctx, wg, errc)
	go wsSrv.Run(ctx, wg, errc)

	select {
	case err = <-errc:
		logger.Error().Err(err).Msg("unexpected server error, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
}
