package release

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foomo/releaseregistry/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type (
	// Config is the static configuration of a Service
	Config struct {
		// PublicURL is the base under which stored objects are publicly served
		PublicURL string
	}
	// Service orchestrates releases across the metadata store and the object storage
	Service struct {
		l                *zap.Logger
		store            Store
		storage          Storage
		publicURL        string
		now              func() time.Time
		validate         *validator.Validate
		cleanupOnFailure bool
	}
	Option func(*Service)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewService(l *zap.Logger, store Store, storage Storage, cfg Config, opts ...Option) *Service {
	inst := &Service{
		l:         l.Named("release"),
		store:     store,
		storage:   storage,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		now:       time.Now,
		validate:  NewValidator(),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithClock(v func() time.Time) Option {
	return func(o *Service) {
		o.now = v
	}
}

// WithCleanupOnFailure removes already uploaded objects when a create fails
// after uploading.
func WithCleanupOnFailure(v bool) Option {
	return func(o *Service) {
		o.cleanupOnFailure = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Create uploads all files and records the release. Objects that were
// uploaded before a failing insert stay in the storage unless the service
// was configured to clean up.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (string, error) {
	if req == nil {
		return "", errors.Wrap(ErrInvalidArgument, "request must not be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return "", errors.Wrap(ErrInvalidArgument, describeValidationError(err))
	}

	l := s.l.With(
		zap.String("run_id", uuid.New().String()),
		zap.String("name", req.Name),
		zap.String("version", req.Version),
	)

	if _, err := s.store.Get(ctx, req.Name, req.Version); err == nil {
		return "", errors.Wrapf(ErrConflict, "%s %s", req.Name, req.Version)
	} else if !errors.Is(err, ErrNotFound) {
		return "", errors.Wrap(err, "failed to look up release")
	}

	var (
		keys   = make([]string, 0, len(req.Files))
		assets = make([]string, 0, len(req.Files))
	)
	for _, file := range req.Files {
		key := assetKey(req.Name, req.Version, file.Name)
		l.Debug("uploading file", zap.String("key", key))
		if err := s.storage.Write(ctx, key, file.Content, file.ContentType); err != nil {
			s.abandon(ctx, l, keys)
			return "", errors.Wrapf(err, "failed to upload %s", file.Name)
		}
		metrics.UploadedObjectsCounter.WithLabelValues().Inc()
		keys = append(keys, key)
		assets = append(assets, s.assetURL(req.Name, req.Version, file.Name))
	}

	id, err := s.store.Insert(ctx, &Release{
		Name:    req.Name,
		Version: req.Version,
		Date:    s.now(),
		Assets:  assets,
	})
	if errors.Is(err, ErrConflict) {
		// lost the race against a concurrent create, the objects belong to the winner now
		l.Warn("release was created concurrently", zap.Error(err))
		return "", errors.Wrapf(ErrConflict, "%s %s", req.Name, req.Version)
	} else if err != nil {
		l.Error("failed to insert release", zap.Error(err))
		s.abandon(ctx, l, keys)
		return "", errors.Wrap(ErrCreationFailed, err.Error())
	}

	l.Info("release created", zap.String("id", id), zap.Int("assets", len(assets)))
	metrics.ReleasesCreatedCounter.WithLabelValues().Inc()
	return id, nil
}

// List returns the requested page of all releases
func (s *Service) List(ctx context.Context, page, per int64) (*Pagination[*Release], error) {
	if page < 1 {
		return nil, errors.Wrap(ErrInvalidArgument, "page must be greater than 0")
	}
	if per < 1 {
		return nil, errors.Wrap(ErrInvalidArgument, "per must be greater than 0")
	}

	items, err := s.store.List(ctx, (page-1)*per, per)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list releases")
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count releases")
	}
	if items == nil {
		items = []*Release{}
	}

	return &Pagination[*Release]{
		Page:       page,
		Per:        per,
		Total:      total,
		TotalPages: TotalPages(total, per),
		Items:      items,
	}, nil
}

// ListNames returns all distinct release names
func (s *Service) ListNames(ctx context.Context) ([]string, error) {
	names, err := s.store.Names(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list release names")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ListVersions returns all distinct versions of name, an empty list for unknown names
func (s *Service) ListVersions(ctx context.Context, name string) ([]string, error) {
	versions, err := s.store.Versions(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list release versions")
	}
	if versions == nil {
		versions = []string{}
	}
	return versions, nil
}

func (s *Service) Get(ctx context.Context, name, version string) (*Release, error) {
	r, err := s.store.Get(ctx, name, version)
	if errors.Is(err, ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", name, version)
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get release")
	}
	return r, nil
}

// Delete removes the release record and then its objects. Object deletion
// is best effort: failures are logged and never undo the record removal.
func (s *Service) Delete(ctx context.Context, name, version string) error {
	r, err := s.Get(ctx, name, version)
	if err != nil {
		return err
	}

	l := s.l.With(
		zap.String("run_id", uuid.New().String()),
		zap.String("name", name),
		zap.String("version", version),
	)

	deleted, err := s.store.Delete(ctx, name, version)
	if err != nil {
		return errors.Wrap(err, "failed to delete release")
	} else if deleted == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", name, version)
	}
	metrics.ReleasesDeletedCounter.WithLabelValues().Inc()

	var errs error
	for _, asset := range r.Assets {
		key, ok := s.keyFromURL(asset)
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("asset %s is not served from %s", asset, s.publicURL))
			metrics.OrphanedObjectsCounter.WithLabelValues().Inc()
			continue
		}
		l.Info("deleting object", zap.String("key", key))
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "failed to delete %s", key))
			metrics.OrphanedObjectsCounter.WithLabelValues().Inc()
			continue
		}
		metrics.DeletedObjectsCounter.WithLabelValues().Inc()
	}
	if errs != nil {
		l.Error("release deleted, but some objects could not be removed",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs),
		)
	} else {
		l.Info("release deleted", zap.Int("assets", len(r.Assets)))
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Service) assetURL(name, version, filename string) string {
	return s.publicURL + "/" + assetKey(name, version, filename)
}

// keyFromURL reverses assetURL
func (s *Service) keyFromURL(asset string) (string, bool) {
	key, ok := strings.CutPrefix(asset, s.publicURL+"/")
	return key, ok && key != ""
}

// abandon handles objects uploaded for a release that will not be recorded
func (s *Service) abandon(ctx context.Context, l *zap.Logger, keys []string) {
	if len(keys) == 0 {
		return
	}
	if !s.cleanupOnFailure {
		l.Warn("leaving orphaned objects", zap.Strings("keys", keys))
		metrics.OrphanedObjectsCounter.WithLabelValues().Add(float64(len(keys)))
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
			l.Warn("failed to clean up orphaned object", zap.String("key", key), zap.Error(err))
			metrics.OrphanedObjectsCounter.WithLabelValues().Inc()
		}
	}
}

func describeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "releasename":
		return "name must follow the format: [a-zA-Z0-9]+(\\.[a-zA-Z0-9]+)+"
	case "filename":
		return fmt.Sprintf("invalid filename %q", fe.Value())
	case "releaseversion":
		return fmt.Sprintf("invalid version %q", fe.Value())
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	default:
		return fe.Error()
	}
}

func assetKey(name, version, filename string) string {
	return name + "/" + version + "/" + filename
}
