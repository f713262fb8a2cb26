package store

import (
	"context"
	"time"

	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	DefaultMongoDatabase   = "kongshum-release"
	DefaultMongoCollection = "releases"

	uniqueIndexName = "name_version_unique"
)

var (
	withoutID   = bson.D{{Key: "_id", Value: 0}}
	releaseSort = bson.D{{Key: "name", Value: 1}, {Key: "version", Value: -1}}
)

type (
	// MongoStore implements release.Store on a MongoDB collection
	MongoStore struct {
		l          *zap.Logger
		client     *mongo.Client
		collection *mongo.Collection
		validate   *validator.Validate
	}
	mongoConfig struct {
		database   string
		collection string
		timeout    time.Duration
	}
	MongoOption func(*mongoConfig)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func MongoWithDatabase(v string) MongoOption {
	return func(o *mongoConfig) {
		o.database = v
	}
}

func MongoWithCollection(v string) MongoOption {
	return func(o *mongoConfig) {
		o.collection = v
	}
}

func MongoWithTimeout(v time.Duration) MongoOption {
	return func(o *mongoConfig) {
		o.timeout = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewMongoStore connects to uri and makes sure the unique (name, version) index exists.
func NewMongoStore(ctx context.Context, l *zap.Logger, uri string, opts ...MongoOption) (*MongoStore, error) {
	cfg := &mongoConfig{
		database:   DefaultMongoDatabase,
		collection: DefaultMongoCollection,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(cfg.timeout).
		SetServerSelectionTimeout(cfg.timeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo")
	}

	inst := NewMongoStoreFromCollection(l, client.Database(cfg.database).Collection(cfg.collection))
	inst.client = client
	if err := inst.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return inst, nil
}

// NewMongoStoreFromCollection creates a store on an existing collection.
func NewMongoStoreFromCollection(l *zap.Logger, collection *mongo.Collection) *MongoStore {
	return &MongoStore{
		l:          l.Named("mongo"),
		client:     collection.Database().Client(),
		collection: collection,
		validate:   release.NewValidator(),
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	name, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(uniqueIndexName),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create unique index")
	}
	m.l.Debug("ensured index", zap.String("index", name))
	return nil
}

func (m *MongoStore) Get(ctx context.Context, name, version string) (*release.Release, error) {
	var r release.Release
	err := m.collection.FindOne(ctx,
		bson.M{"name": name, "version": version},
		options.FindOne().SetProjection(withoutID),
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, release.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find release")
	}
	if err := m.check(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *MongoStore) Insert(ctx context.Context, r *release.Release) (string, error) {
	if err := m.check(r); err != nil {
		return "", err
	}
	res, err := m.collection.InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		return "", errors.Wrap(release.ErrConflict, err.Error())
	} else if err != nil {
		return "", errors.Wrap(err, "failed to insert release")
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return "", errors.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
}

func (m *MongoStore) List(ctx context.Context, skip, limit int64) ([]*release.Release, error) {
	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().
		SetProjection(withoutID).
		SetSort(releaseSort).
		SetSkip(skip).
		SetLimit(limit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find releases")
	}

	releases := []*release.Release{}
	if err := cursor.All(ctx, &releases); err != nil {
		return nil, errors.Wrap(err, "failed to decode releases")
	}
	for _, r := range releases {
		if err := m.check(r); err != nil {
			return nil, err
		}
	}
	return releases, nil
}

func (m *MongoStore) Count(ctx context.Context) (int64, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to count releases")
	}
	return count, nil
}

func (m *MongoStore) Names(ctx context.Context) ([]string, error) {
	return m.distinct(ctx, "name", bson.M{})
}

func (m *MongoStore) Versions(ctx context.Context, name string) ([]string, error) {
	return m.distinct(ctx, "version", bson.M{"name": name})
}

func (m *MongoStore) Delete(ctx context.Context, name, version string) (int64, error) {
	res, err := m.collection.DeleteOne(ctx, bson.M{"name": name, "version": version})
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete release")
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Drop removes the collection including all records and indexes
func (m *MongoStore) Drop(ctx context.Context) error {
	return m.collection.Drop(ctx)
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (m *MongoStore) distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	values, err := m.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list distinct %s", field)
	}
	ret := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("malformed release record: %s has type %T", field, v)
		}
		ret = append(ret, s)
	}
	return ret, nil
}

func (m *MongoStore) check(r *release.Release) error {
	if err := m.validate.Struct(r); err != nil {
		m.l.Warn("malformed release record", zap.String("name", r.Name), zap.String("version", r.Version), zap.Error(err))
		return errors.Wrap(err, "malformed release record")
	}
	return nil
}
