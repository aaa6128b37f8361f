package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/ragnarcam/server/backend/storage/clips"
)

const (
	defaultShutdownDeadline = 10 * time.Second

	defaultClipExtension = "webm"
	maxClipBytes         = 100 << 20
)

var (
	ErrUnexpected = errors.New("unexpected server error")
)

// ClipStore is the recorded-clip boundary: write a blob, list a room's
// clips newest-first, resolve a clip back to a readable file.
type ClipStore interface {
	Put(room string, ts int64, ext string, r io.Reader) (clips.Clip, error)
	List(room string) ([]clips.Clip, error)
	Path(file string) (string, error)
}

type ConfigResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
	FixedRoom  *string            `json:"fixedRoom"`
}

type ListResponse struct {
	Clips []clips.Clip `json:"clips"`
}

type GenericResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Server struct {
	logger     zerolog.Logger
	store      ClipStore
	iceServers []webrtc.ICEServer
	fixedRoom  string
	*http.Server
}

type Config struct {
	Logger     *zerolog.Logger
	ClipStore  ClipStore
	ICEServers []webrtc.ICEServer
	FixedRoom  string
	ListenAddr string
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		logger:     cfg.Logger.With().Str("component", "api-server").Logger(),
		store:      cfg.ClipStore,
		iceServers: cfg.ICEServers,
		fixedRoom:  cfg.FixedRoom,
	}

	r := http.NewServeMux()
	r.HandleFunc("GET /healthz", srv.healthz)
	r.HandleFunc("GET /config", srv.config)
	r.HandleFunc("PUT /api/clips/{room}", srv.putClip)
	r.HandleFunc("GET /api/clips/{room}", srv.listClips)
	r.HandleFunc("GET /clips/{file}", srv.getClip)
	r.HandleFunc("OPTIONS /", corsHandler)

	srv.Server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return srv
}

func corsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	srv.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (srv *Server) config(w http.ResponseWriter, _ *http.Request) {
	resp := ConfigResponse{ICEServers: srv.iceServers}
	if srv.fixedRoom != "" {
		resp.FixedRoom = &srv.fixedRoom
	}
	srv.writeJSON(w, http.StatusOK, &resp)
}

func (srv *Server) putClip(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")

	ts := time.Now().UnixMilli()
	if v := r.URL.Query().Get("ts"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			srv.writeJSON(w, http.StatusBadRequest, &GenericResponse{Error: "invalid ts"})
			return
		}
		ts = parsed
	}
	ext := r.URL.Query().Get("ext")
	if ext == "" {
		ext = defaultClipExtension
	}

	defer func() {
		_ = r.Body.Close()
	}()
	clip, err := srv.store.Put(room, ts, ext, http.MaxBytesReader(w, r.Body, maxClipBytes))
	if err != nil {
		srv.logger.Error().Err(err).Str("room", room).Msg("failed to store clip")
		srv.writeJSON(w, http.StatusInternalServerError, &GenericResponse{Error: "unable to store clip"})
		return
	}

	srv.logger.Debug().
		Str("room", room).
		Str("file", clip.File).
		Msg("clip stored")
	srv.writeJSON(w, http.StatusCreated, &clip)
}

func (srv *Server) listClips(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	list, err := srv.store.List(room)
	if err != nil {
		srv.logger.Error().Err(err).Str("room", room).Msg("failed to list clips")
		srv.writeJSON(w, http.StatusInternalServerError, &GenericResponse{Error: "unable to list clips"})
		return
	}
	srv.writeJSON(w, http.StatusOK, &ListResponse{Clips: list})
}

func (srv *Server) getClip(w http.ResponseWriter, r *http.Request) {
	path, err := srv.store.Path(r.PathValue("file"))
	if err != nil {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.ServeFile(w, r, path)
}

func (srv *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(code)
	if _, err = w.Write(b); err != nil {
		srv.logger.Error().Err(err).Msg("failed to write response")
	}
}

func (srv *Server) Run(ctx context.Context, wg *sync.WaitGroup, errc chan<- error) {
	defer func() {
		srv.logger.Debug().Msg("server stopped")
		wg.Done()
	}()

	hErr := make(chan error)
	go func() {
		hErr <- srv.ListenAndServe()
	}()

	srv.logger.Info().Str("addr", srv.Addr).Msg("server started")

	select {
	case err := <-hErr:
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Join(ErrUnexpected, err)
		}
	case <-ctx.Done():
		shCtx, shCancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
		defer shCancel()
		if err := srv.Shutdown(shCtx); err != nil {
			srv.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}
}
