package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/foomo/releaseregistry/pkg/handler"
	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/foomo/releaseregistry/pkg/storage"
	"github.com/foomo/releaseregistry/pkg/store"
	"github.com/foomo/releaseregistry/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type (
	metadataStore interface {
		release.Store
		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}
	objectStorage interface {
		release.Storage
		Close() error
	}
)

func NewHTTPCommand() *cobra.Command {
	v := newViper()
	service.DefaultHTTPPProfAddr = ":6060"

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Start http server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publicURL := publicURLFlag(v)
			if !utils.IsValidURL(publicURL) {
				return errors.Errorf("public url must be an absolute http(s) url, got %q", publicURL)
			}
			credentials := handler.Credentials{
				Username: authUsernameFlag(v),
				Password: authPasswordFlag(v),
			}
			if credentials.Username == "" || credentials.Password == "" {
				return errors.New("auth username and password are required")
			}

			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()
			l.Info("starting release registry",
				zap.String("address", addressFlag(v)),
				zap.String("base_path", basePathFlag(v)),
				zap.String("public_url", publicURL),
				zap.String("store_type", storeTypeFlag(v)),
				zap.String("storage_type", storageTypeFlag(v)),
				zap.Bool("cleanup_on_failure", cleanupOnFailureFlag(v)),
			)

			st, err := createStore(cmd.Context(), v, l)
			if err != nil {
				return fmt.Errorf("failed to create store: %w", err)
			}

			objects, err := createStorage(cmd.Context(), v, l)
			if err != nil {
				_ = st.Close(cmd.Context())
				return fmt.Errorf("failed to create storage: %w", err)
			}

			svc := release.NewService(l.Named("inst.release"),
				st,
				objects,
				release.Config{PublicURL: publicURL},
				release.WithCleanupOnFailure(cleanupOnFailureFlag(v)),
			)

			svr.AddReadinessHealthzers(healthz.NewHealthzerFn(st.Ping))

			svr.AddClosers(
				func(ctx context.Context) error {
					return objects.Close()
				},
				func(ctx context.Context) error {
					return st.Close(ctx)
				},
			)

			svr.AddServices(
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), svc,
						handler.WithBasePath(basePathFlag(v)),
						handler.WithCredentials(credentials),
						handler.WithMaxUploadMemory(maxUploadMemoryFlag(v)),
					),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addPublicURLFlag(flags, v)
	addAuthUsernameFlag(flags, v)
	addAuthPasswordFlag(flags, v)
	addStoreTypeFlag(flags, v)
	addMongoURIFlag(flags, v)
	addMongoDatabaseFlag(flags, v)
	addMongoCollectionFlag(flags, v)
	addMongoTimeoutFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addStorageDirFlag(flags, v)
	addCleanupOnFailureFlag(flags, v)
	addMaxUploadMemoryFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addGzipLevelFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)

	return cmd
}

// createStore creates the metadata store based on the configuration
func createStore(ctx context.Context, v *viper.Viper, l *zap.Logger) (metadataStore, error) {
	storeType := storeTypeFlag(v)
	l.Info("creating store", zap.String("type", storeType))

	switch storeType {
	case "mongo", "":
		uri := mongoURIFlag(v)
		if uri == "" {
			return nil, errors.New("mongo uri is required when store-type is 'mongo'")
		}
		l.Info("using mongo store",
			zap.String("database", mongoDatabaseFlag(v)),
			zap.String("collection", mongoCollectionFlag(v)),
			zap.Bool("srv", strings.HasPrefix(uri, "mongodb+srv://")),
		)
		return store.NewMongoStore(ctx, l.Named("inst.store"), uri,
			store.MongoWithDatabase(mongoDatabaseFlag(v)),
			store.MongoWithCollection(mongoCollectionFlag(v)),
			store.MongoWithTimeout(mongoTimeoutFlag(v)),
		)
	case "memory":
		l.Warn("using memory store, releases will be lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s (supported: mongo, memory)", storeType)
	}
}

// createStorage creates the object storage based on the configuration
func createStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (objectStorage, error) {
	storageType := storageTypeFlag(v)
	blobBucket := storageBlobBucketFlag(v)
	blobPrefix := storageBlobPrefixFlag(v)

	if storageType != "blob" && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but storage-type is not 'blob'; blob config will be ignored",
			zap.String("storage-type", storageType),
		)
	}

	l.Info("creating storage", zap.String("type", storageType))

	switch storageType {
	case "blob", "":
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when storage-type is 'blob' (supported schemes: %s)", strings.Join(storage.SupportedBlobSchemes, ", "))
		}
		if !storage.IsValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme; supported schemes: %s", strings.Join(storage.SupportedBlobSchemes, ", "))
		}
		l.Info("using blob storage",
			zap.String("provider", detectBlobProvider(blobBucket)),
			zap.String("prefix", blobPrefix),
		)
		return storage.NewBlobStorage(ctx, blobBucket, blobPrefix)
	case "filesystem":
		dir := storageDirFlag(v)
		l.Info("using filesystem storage", zap.String("dir", dir))
		return storage.NewFilesystemStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: blob, filesystem)", storageType)
	}
}

// detectBlobProvider returns a human-readable provider name from the URL scheme
func detectBlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	case strings.HasPrefix(bucketURL, "file://"):
		return "local directory"
	case strings.HasPrefix(bucketURL, "mem://"):
		return "memory"
	default:
		return "unknown"
	}
}
