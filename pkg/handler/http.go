package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/releaseregistry/pkg/metrics"
	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/foomo/releaseregistry/responses"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBasePath        = "/release"
	DefaultMaxUploadMemory = 32 << 20

	defaultPage = 1
	defaultPer  = 10
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	HTTP struct {
		l               *zap.Logger
		basePath        string
		service         *release.Service
		credentials     Credentials
		maxUploadMemory int64
		router          chi.Router
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the REST surface of the release registry
func NewHTTP(l *zap.Logger, service *release.Service, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:               l.Named("http"),
		basePath:        DefaultBasePath,
		service:         service,
		maxUploadMemory: DefaultMaxUploadMemory,
	}

	for _, opt := range opts {
		opt(inst)
	}

	inst.router = chi.NewRouter()
	if p := strings.TrimRight(inst.basePath, "/"); p != "" {
		inst.router.Route(p, inst.routes)
	} else {
		inst.routes(inst.router)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.basePath = v
	}
}

func WithCredentials(v Credentials) HTTPOption {
	return func(o *HTTP) {
		o.credentials = v
	}
}

func WithMaxUploadMemory(v int64) HTTPOption {
	return func(o *HTTP) {
		o.maxUploadMemory = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) routes(r chi.Router) {
	r.Get("/", h.instrument(RouteList, h.list))
	r.Get("/names", h.instrument(RouteListNames, h.listNames))
	r.Get("/versions/{name}", h.instrument(RouteListVersions, h.listVersions))
	r.Get("/{name}/{version}", h.instrument(RouteGet, h.get))
	r.Group(func(r chi.Router) {
		r.Use(h.basicAuth)
		r.Post("/", h.instrument(RouteCreate, h.create))
		r.Delete("/{name}/{version}", h.instrument(RouteDelete, h.delete))
	})
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
		h.writeError(w, r, errors.Wrap(release.ErrInvalidArgument, "failed to parse multipart form: "+err.Error()))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	name := r.FormValue("name")
	if !release.ValidName(name) {
		h.writeError(w, r, errors.Wrap(release.ErrInvalidArgument, "name must follow the format: [a-zA-Z0-9]+(\\.[a-zA-Z0-9]+)+"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.writeError(w, r, errors.Wrap(release.ErrInvalidArgument, "files are required"))
		return
	}

	req := &release.CreateRequest{
		Name:    name,
		Version: r.FormValue("version"),
		Files:   make([]release.File, 0, len(headers)),
	}
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			h.writeError(w, r, errors.Wrapf(release.ErrInvalidArgument, "failed to open %s: %s", header.Filename, err))
			return
		}
		defer f.Close()
		req.Files = append(req.Files, release.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &responses.Created{ID: id})
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	per, err := queryInt(r, "per", defaultPer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.service.List(r.Context(), page, per)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *HTTP) listNames(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.ListNames(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *HTTP) listVersions(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.ListVersions(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.Get(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *HTTP) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &responses.Message{Message: "Release deleted"})
}

func (h *HTTP) instrument(route Route, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)

		status := strconv.Itoa(ww.Status())
		metrics.ServiceRequestCounter.WithLabelValues(string(route), status).Inc()
		metrics.ServiceRequestDuration.WithLabelValues(string(route), status).Observe(time.Since(start).Seconds())
	}
}

func (h *HTTP) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		h.l.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		detail = http.StatusText(status)
	} else {
		h.l.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	h.writeJSON(w, status, responses.NewError(status, detail))
}

// writeJSON encodes reply as JSON with the given status
func (h *HTTP) writeJSON(w http.ResponseWriter, status int, reply interface{}) {
	bytes, err := json.Marshal(reply)
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bytes)
}

// StatusCode maps workflow errors onto http status codes
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, release.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, release.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, release.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, release.ErrCreationFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, fallback int64) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(release.ErrInvalidArgument, "%s must be an integer", key)
	}
	return i, nil
}
