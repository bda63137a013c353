package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagirkamaev/to-do-v2/logging"
	"github.com/tagirkamaev/to-do-v2/models"
	"github.com/tagirkamaev/to-do-v2/utils"
)

type UserService struct {
	usersCollection *mongo.Collection
}

func NewUserService(db *mongo.Database) *UserService {
	return &UserService{
		usersCollection: db.Collection("users"),
	}
}

// RegisterUser creates an account and returns it together with a signed
// token. Emails are unique; a duplicate registration fails with
// ErrEmailTaken.
func (s *UserService) RegisterUser(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if err != mongo.ErrNoDocuments {
		return nil, "", fmt.Errorf("failed to check existing user: %v", err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      name,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.usersCollection.InsertOne(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save user: %v", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered", user.ID.Hex())
	return user, token, nil
}

// LoginUser verifies the credentials and returns the user with a fresh
// token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch user: %v", err)
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, "", ErrWrongPassword
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	return &user, token, nil
}

func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// UpdateName changes the profile name. Email and password are immutable
// through this endpoint.
func (s *UserService) UpdateName(ctx context.Context, userID primitive.ObjectID, name string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now()}}
	result, err := s.usersCollection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}
