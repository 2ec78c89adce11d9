package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/page"
	"github.com/dmorgan81/captionbot/internal/session"
	"github.com/dmorgan81/captionbot/internal/tone"
	"github.com/google/uuid"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	cookieName   = "captionbot_session"
	formOverhead = 1 << 20
	memoryLimit  = 32 << 20
)

type Server struct {
	addr      string
	maxBytes  int64
	sessions  *session.Registry
	templator *page.Templator
}

func NewServer(i *do.Injector) (*Server, error) {
	return &Server{
		addr:      do.MustInvokeNamed[string](i, "addr"),
		maxBytes:  do.MustInvokeNamed[int64](i, "max_image_bytes"),
		sessions:  do.MustInvoke[*session.Registry](i),
		templator: do.MustInvoke[*page.Templator](i),
	}, nil
}

func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("POST /generate", s.generate)
	mux.HandleFunc("POST /reset", s.reset)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return withLogger(ctx, mux)
}

// Serve blocks until ctx is done, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("server").With("addr", s.addr)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.sessions.Run(ctx)
		return nil
	})
	group.Go(func() error {
		log.Info("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// withLogger tags every request's logger with a request id.
func withLogger(ctx context.Context, next http.Handler) http.Handler {
	base := log.FromContextOrDiscard(ctx)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := base.With("request", uuid.NewString(), "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(log.NewContext(r.Context(), logger)))
	})
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// session returns the caller's session, starting one and setting the cookie
// when needed. Only a submission starts a session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	id := sessionID(r)
	sess := s.sessions.Session(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	snap := session.Snapshot{Tone: tone.Default()}
	if sess, ok := s.sessions.Lookup(sessionID(r)); ok {
		snap = sess.Snapshot()
	}
	s.render(w, r, http.StatusOK, snap)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	log := log.FromContextOrDiscard(r.Context()).WithGroup("generate")
	sess := s.session(w, r)

	if s.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		log.Warn("unreadable form", "error", err.Error())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, http.StatusRequestEntityTooLarge, sess, media.ErrTooLarge)
			return
		}
		s.renderError(w, r, http.StatusBadRequest, sess, &media.ReadError{Err: err})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	attempt := session.Attempt{
		Keywords:   r.FormValue("keywords"),
		Tone:       r.FormValue("tone"),
		CustomTone: r.FormValue("custom_tone"),
	}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		attempt.Image = file
		attempt.MediaType = header.Header.Get("Content-Type")
	case !errors.Is(err, http.ErrMissingFile):
		s.renderError(w, r, http.StatusBadRequest, sess, &media.ReadError{Err: err})
		return
	}

	_, err = sess.Submit(r.Context(), attempt)
	if errors.Is(err, session.ErrBusy) {
		s.renderError(w, r, http.StatusConflict, sess, err)
		return
	}
	s.render(w, r, statusFor(err), sess.Snapshot())
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.sessions.Lookup(sessionID(r)); ok {
		sess.Reset()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, snap session.Snapshot) {
	var (
		body []byte
		err  error
	)
	if snap.State == session.Done && snap.Content != nil {
		body, err = s.templator.Results(r.Context(), page.ResultsParams{
			Image:    template.URL(snap.Preview.DataURL()),
			Captions: snap.Content.Captions,
			Hashtags: snap.Content.HashtagLine(),
		})
	} else {
		body, err = s.templator.Form(r.Context(), formParams(snap))
	}
	if err != nil {
		log.FromContextOrDiscard(r.Context()).Error("rendering page", "error", err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, sess *session.Session, err error) {
	snap := sess.Snapshot()
	snap.Error = session.Message(err)
	s.render(w, r, status, snap)
}

func formParams(snap session.Snapshot) page.FormParams {
	return page.FormParams{
		Tones:        tone.Predefined,
		CustomOption: tone.Custom,
		Accept:       strings.Join(media.Accepted, ","),
		Selected:     snap.Tone,
		CustomTone:   snap.Custom,
		Keywords:     snap.Keywords,
		Error:        snap.Error,
	}
}

func statusFor(err error) int {
	var (
		readErr    *media.ReadError
		genErr     *caption.GenerationError
		invalidErr *caption.InvalidResponseError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &genErr), errors.As(err, &invalidErr):
		return http.StatusBadGateway
	case errors.As(err, &readErr):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
