// api/dao/user_dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/mealcraft/api/audit"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	helper_util "github.com/mealcraft/api/util/helper"
)

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on User email")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_email IF NOT EXISTS
        FOR (u:User) REQUIRE u.email IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on User email", zap.Error(err))
		return err
	}

	return nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.User) (string, error) {
	start := time.Now()
	logger.Info("Creating new user", zap.String("email", user.Email))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	existing, err := dao.GetUserByEmail(ctx, user.Email)
	if err != nil && err != mealcraft_errors.ErrUserNotFound {
		return "", err
	}
	if existing != nil {
		return "", mealcraft_errors.ErrUserConflict
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:User {email: $email})
        ON CREATE SET u += $props
        RETURN u.id as id
        `
		params := map[string]interface{}{
			"email": user.Email,
			"props": userProps(&user),
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, mealcraft_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.Duration("duration", duration))
		return "", err
	}

	userID := result.(string)
	logger.Info("User created successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	auditLog := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        RequestingUser(ctx),
		Action:        "CREATE_USER",
		AccessGranted: true,
		ChangeDetails: userChangeDetails(nil, &user),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return userID, nil
}

func (dao *UserDAO) UpdateUser(ctx context.Context, user model.User) (*model.User, error) {
	start := time.Now()
	logger.Info("Updating user", zap.String("email", user.Email))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldUser, err := dao.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	updated, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:User {email: $email})
        SET u += $props
        RETURN u
        `
		params := map[string]interface{}{
			"email": user.Email,
			"props": userProps(&user),
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return mapNodeToUser(node), nil
		}

		return nil, mealcraft_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedUser := updated.(*model.User)
	logger.Info("User updated successfully",
		zap.String("email", user.Email),
		zap.Duration("duration", duration))

	auditLog := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        RequestingUser(ctx),
		Action:        "UPDATE_USER",
		AccessGranted: true,
		ChangeDetails: userChangeDetails(oldUser, updatedUser),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedUser, nil
}

func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User {email: $email})
    RETURN u
    `
	result, err := session.Run(query, map[string]interface{}{"email": email})
	if err != nil {
		logger.Error("Failed to execute get user query",
			zap.Error(err),
			zap.String("email", email),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToUser(node), nil
	}

	return nil, mealcraft_errors.ErrUserNotFound
}

func (dao *UserDAO) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User)
    RETURN u
    ORDER BY u.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list users query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	var users []*model.User
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		users = append(users, mapNodeToUser(node))
	}

	logger.Info("Users listed successfully",
		zap.Int("count", len(users)),
		zap.Duration("duration", time.Since(start)))

	return users, nil
}

func (dao *UserDAO) ListUsersWithCommunityTag(ctx context.Context, tag string) ([]*model.User, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User)
    WHERE $tag IN u.cois
    RETURN u
    `
	result, err := session.Run(query, map[string]interface{}{"tag": tag})
	if err != nil {
		logger.Error("Failed to execute list users by community tag query",
			zap.Error(err),
			zap.String("tag", tag),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	var users []*model.User
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		users = append(users, mapNodeToUser(node))
	}

	return users, nil
}

func userProps(user *model.User) map[string]interface{} {
	return map[string]interface{}{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"roles":        user.Roles,
		"region":       user.Region,
		"acgs":         user.AccessControlGroups,
		"cois":         user.CommunitiesOfInterest,
		"createdAt":    user.CreatedAt.Format(time.RFC3339),
		"updatedAt":    user.UpdatedAt.Format(time.RFC3339),
	}
}

// Helper function to map Neo4j Node to User struct
func mapNodeToUser(node neo4j.Node) *model.User {
	props := node.Props
	user := &model.User{}

	user.ID, _ = props["id"].(string)
	user.Name, _ = props["name"].(string)
	user.Email, _ = props["email"].(string)
	user.PasswordHash, _ = props["passwordHash"].(string)
	user.Roles = helper_util.StringSlice(props["roles"])
	user.Region, _ = props["region"].(string)
	user.AccessControlGroups = helper_util.StringSlice(props["acgs"])
	user.CommunitiesOfInterest = helper_util.StringSlice(props["cois"])

	if createdAt, ok := props["createdAt"].(string); ok {
		user.CreatedAt = helper_util.ParseTime(createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		user.UpdatedAt = helper_util.ParseTime(updatedAt)
	}

	return user
}

// Helper function to create change details for audit log
func userChangeDetails(oldUser, newUser *model.User) json.RawMessage {
	changes := make(map[string]interface{})
	if oldUser == nil {
		changes["action"] = "created"
	} else if newUser == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldUser.Name != newUser.Name {
			changes["name"] = map[string]string{"old": oldUser.Name, "new": newUser.Name}
		}
		if oldUser.Region != newUser.Region {
			changes["region"] = map[string]string{"old": oldUser.Region, "new": newUser.Region}
		}
		// Add more fields as needed
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
