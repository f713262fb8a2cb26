package cmd

import (
	"time"

	"github.com/foomo/releaseregistry/pkg/handler"
	"github.com/foomo/releaseregistry/pkg/store"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "RELEASE_REGISTRY_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", handler.DefaultBasePath, "Base path to export the release api on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "RELEASE_REGISTRY_BASE_PATH")
}

func publicURLFlag(v *viper.Viper) string {
	return v.GetString("public_url")
}

func addPublicURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("public-url", "", "Public base url the stored release files are served from")
	_ = v.BindPFlag("public_url", flags.Lookup("public-url"))
	_ = v.BindEnv("public_url", "PUBLIC_URL")
}

func authUsernameFlag(v *viper.Viper) string {
	return v.GetString("auth.username")
}

func addAuthUsernameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("auth-username", "", "Username required to publish and delete releases")
	_ = v.BindPFlag("auth.username", flags.Lookup("auth-username"))
	_ = v.BindEnv("auth.username", "USERNAME")
}

func authPasswordFlag(v *viper.Viper) string {
	return v.GetString("auth.password")
}

func addAuthPasswordFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("auth-password", "", "Password required to publish and delete releases")
	_ = v.BindPFlag("auth.password", flags.Lookup("auth-password"))
	_ = v.BindEnv("auth.password", "PASSWORD")
}

func storeTypeFlag(v *viper.Viper) string {
	return v.GetString("store.type")
}

func addStoreTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("store-type", "mongo", "Metadata store type: mongo or memory")
	_ = v.BindPFlag("store.type", flags.Lookup("store-type"))
	_ = v.BindEnv("store.type", "RELEASE_REGISTRY_STORE_TYPE")
}

func mongoURIFlag(v *viper.Viper) string {
	return v.GetString("mongo.uri")
}

func addMongoURIFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("mongo-uri", "", "MongoDB connection string")
	_ = v.BindPFlag("mongo.uri", flags.Lookup("mongo-uri"))
	_ = v.BindEnv("mongo.uri", "DB_URL")
}

func mongoDatabaseFlag(v *viper.Viper) string {
	return v.GetString("mongo.database")
}

func addMongoDatabaseFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("mongo-database", store.DefaultMongoDatabase, "MongoDB database name")
	_ = v.BindPFlag("mongo.database", flags.Lookup("mongo-database"))
	_ = v.BindEnv("mongo.database", "RELEASE_REGISTRY_MONGO_DATABASE")
}

func mongoCollectionFlag(v *viper.Viper) string {
	return v.GetString("mongo.collection")
}

func addMongoCollectionFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("mongo-collection", store.DefaultMongoCollection, "MongoDB collection name")
	_ = v.BindPFlag("mongo.collection", flags.Lookup("mongo-collection"))
	_ = v.BindEnv("mongo.collection", "RELEASE_REGISTRY_MONGO_COLLECTION")
}

func mongoTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("mongo.timeout")
}

func addMongoTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("mongo-timeout", 10*time.Second, "MongoDB connect and server selection timeout")
	_ = v.BindPFlag("mongo.timeout", flags.Lookup("mongo-timeout"))
	_ = v.BindEnv("mongo.timeout", "RELEASE_REGISTRY_MONGO_TIMEOUT")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "blob", "Object storage type: blob or filesystem")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "RELEASE_REGISTRY_STORAGE_TYPE")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Blob bucket url, e.g. s3://releases?region=eu-central-1&endpoint=https://s3.example.com")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "RELEASE_REGISTRY_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix within the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "RELEASE_REGISTRY_STORAGE_BLOB_PREFIX")
}

func storageDirFlag(v *viper.Viper) string {
	return v.GetString("storage.dir")
}

func addStorageDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-dir", "/var/lib/releaseregistry", "Where to put release files when using filesystem storage")
	_ = v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = v.BindEnv("storage.dir", "RELEASE_REGISTRY_STORAGE_DIR")
}

func cleanupOnFailureFlag(v *viper.Viper) bool {
	return v.GetBool("cleanup_on_failure")
}

func addCleanupOnFailureFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("cleanup-on-failure", false, "Remove uploaded files when a release cannot be recorded")
	_ = v.BindPFlag("cleanup_on_failure", flags.Lookup("cleanup-on-failure"))
	_ = v.BindEnv("cleanup_on_failure", "RELEASE_REGISTRY_CLEANUP_ON_FAILURE")
}

func maxUploadMemoryFlag(v *viper.Viper) int64 {
	return v.GetInt64("max_upload_memory")
}

func addMaxUploadMemoryFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int64("max-upload-memory", handler.DefaultMaxUploadMemory, "Bytes of a multipart upload kept in memory before spilling to disk")
	_ = v.BindPFlag("max_upload_memory", flags.Lookup("max-upload-memory"))
	_ = v.BindEnv("max_upload_memory", "RELEASE_REGISTRY_MAX_UPLOAD_MEMORY")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "RELEASE_REGISTRY_GRACEFUL_PERIOD")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", 6, "Compression level of gzipped responses")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "RELEASE_REGISTRY_GZIP_LEVEL")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

func serverFlag(v *viper.Viper) string {
	return v.GetString("server")
}

func addServerFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("server", "http://localhost:8080"+handler.DefaultBasePath, "Release api url")
	_ = v.BindPFlag("server", flags.Lookup("server"))
	_ = v.BindEnv("server", "RELEASE_REGISTRY_SERVER")
}

func usernameFlag(v *viper.Viper) string {
	return v.GetString("username")
}

func addUsernameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("username", "", "Basic auth username")
	_ = v.BindPFlag("username", flags.Lookup("username"))
	_ = v.BindEnv("username", "USERNAME")
}

func passwordFlag(v *viper.Viper) string {
	return v.GetString("password")
}

func addPasswordFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("password", "", "Basic auth password")
	_ = v.BindPFlag("password", flags.Lookup("password"))
	_ = v.BindEnv("password", "PASSWORD")
}

func pageFlag(v *viper.Viper) int64 {
	return v.GetInt64("page")
}

func addPageFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int64("page", 1, "Page to list, starting at 1")
	_ = v.BindPFlag("page", flags.Lookup("page"))
}

func perFlag(v *viper.Viper) int64 {
	return v.GetInt64("per")
}

func addPerFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int64("per", 10, "Number of releases per page")
	_ = v.BindPFlag("per", flags.Lookup("per"))
}
