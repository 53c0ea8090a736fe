package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

const (
	usersCollection = "users"

	indexUsername = "uniq_username"
	indexEmail    = "uniq_email"
)

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID             string `bson:"_id"`
	Role           string `bson:"role"`
	Username       string `bson:"username"`
	HashedPassword string `bson:"hashed_password"`
	FirstName      string `bson:"fname"`
	LastName       string `bson:"lname"`
	Email          string `bson:"email"`
	Address        string `bson:"address"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

// EnsureIndexes creates the unique indexes that back username and email
// uniqueness.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(indexUsername).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateField(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Save writes the profile fields of user and returns the stored document.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"fname":      user.FirstName,
		"lname":      user.LastName,
		"address":    user.Address,
		"updated_at": user.UpdatedAt.Unix(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"username": user.Username}, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

// dupIndex captures the index name from an E11000 message. Only the first
// "index: <name> dup key" is read; the duplicated value follows it and may
// contain anything.
var dupIndex = regexp.MustCompile(`index: (\S+) dup key`)

// duplicateField inspects an E11000 error for the index that fired.
func duplicateField(err error) error {
	msgs := []string{err.Error()}
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		msgs = msgs[:0]
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	for _, msg := range msgs {
		m := dupIndex.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		switch m[1] {
		case indexUsername:
			return domain.ErrUsernameExists
		case indexEmail:
			return domain.ErrEmailExists
		}
	}
	return domain.ErrUserExists
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:             u.ID,
		Role:           string(u.Role),
		Username:       u.Username,
		HashedPassword: u.PasswordHash,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Address:        u.Address,
		CreatedAt:      u.CreatedAt.Unix(),
		UpdatedAt:      u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID,
		Username:     mu.Username,
		PasswordHash: mu.HashedPassword,
		Role:         domain.Role(mu.Role),
		FirstName:    mu.FirstName,
		LastName:     mu.LastName,
		Email:        mu.Email,
		Address:      mu.Address,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
