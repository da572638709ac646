package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the MongoDB collection holding one document per user.
const UsersCollection = "users"

// userDocument is the stored shape: `_id`, `username`, `password` (the hash).
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	Email     string             `bson:"email,omitempty"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
}

// toUser maps a stored document to the domain User, turning the ObjectID into
// an opaque string id.
func (d userDocument) toUser() *User {
	u := &User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.Password,
		CreatedAt:      d.CreatedAt,
	}
	if u.CreatedAt.IsZero() && !d.ID.IsZero() {
		// Documents written without created_at still carry their creation time in the ObjectID.
		u.CreatedAt = d.ID.Timestamp().UTC()
	}
	return u
}

// MongoStore keeps users in a MongoDB collection with a unique username index.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore returns a store over db.users. Call EnsureIndexes once at startup.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		coll: db.Collection(UsersCollection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the unique index on username.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

// FindByUsername loads the document for username.
func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser(), nil
}

// Create inserts a new document. The unique index turns a duplicate into ErrDuplicateUser.
func (s *MongoStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  nu.Username,
		Password:  nu.HashedPassword,
		Email:     nu.Email,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond), // BSON dates have millisecond precision
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toUser(), nil
}
