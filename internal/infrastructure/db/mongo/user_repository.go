package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/busops/identity-service/internal/core/domain"
)

const (
	collectionUsers = "users"

	indexEmail = "uniq_email"
	indexPhone = "uniq_phone"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID            string     `bson:"_id"`
	Email         string     `bson:"email"`
	Phone         string     `bson:"phone"`
	PasswordHash  string     `bson:"password_hash"`
	FirstName     string     `bson:"first_name"`
	LastName      string     `bson:"last_name"`
	Role          string     `bson:"role"`
	Status        string     `bson:"status"`
	ProfileImage  *string    `bson:"profile_image,omitempty"`
	DateOfBirth   *time.Time `bson:"date_of_birth,omitempty"`
	Gender        *string    `bson:"gender,omitempty"`
	EmailVerified bool       `bson:"email_verified"`
	PhoneVerified bool       `bson:"phone_verified"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Create inserts a new active user. Uniqueness of email and phone is enforced
// by the indexes created in EnsureIndexes.
func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         string(in.Role),
		Status:       string(domain.StatusActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyConflict(err)
		}
		return nil, oops.Code("USER_INSERT_FAILED").With("collection", collectionUsers).Wrap(err)
	}

	return doc.toDomain()
}

// EnsureIndexes creates the unique indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetName(indexPhone).SetUnique(true)},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return oops.Code("USER_INDEXES_FAILED").With("collection", collectionUsers).Wrap(err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("collection", collectionUsers).Wrap(err)
	}
	return doc.toDomain()
}

// duplicateKeyConflict maps a duplicate key error to the conflicting field.
// The server reports the violated index name in the message.
func duplicateKeyConflict(err error) error {
	if strings.Contains(err.Error(), indexPhone) {
		return domain.ErrPhoneTaken
	}
	return domain.ErrEmailTaken
}

func (d userDocument) toDomain() (*domain.User, error) {
	role := domain.Role(d.Role)
	if !role.Valid() {
		return nil, oops.Code("USER_CORRUPT").With("user_id", d.ID).Errorf("unknown role %q", d.Role)
	}
	status, err := domain.ParseUserStatus(d.Status)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT").With("user_id", d.ID).Errorf("unknown status %q", d.Status)
	}

	return &domain.User{
		ID:            d.ID,
		Email:         d.Email,
		Phone:         d.Phone,
		PasswordHash:  d.PasswordHash,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Role:          role,
		Status:        status,
		ProfileImage:  d.ProfileImage,
		DateOfBirth:   d.DateOfBirth,
		Gender:        d.Gender,
		EmailVerified: d.EmailVerified,
		PhoneVerified: d.PhoneVerified,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}
