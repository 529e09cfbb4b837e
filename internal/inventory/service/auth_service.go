package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/config"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const refreshKeyPrefix = "refresh:"

// AuthService 登录认证。刷新令牌的 jti 写入 Redis 白名单，
// 登出时删除即可吊销。
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb, cfg: cfg}
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login 用户名密码登录
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &ValidationError{Field: "username", Reason: "用户名或密码错误"}
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, &ValidationError{Field: "username", Reason: "账号已停用"}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, &ValidationError{Field: "username", Reason: "用户名或密码错误"}
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh 用刷新令牌换取新的令牌对，旧刷新令牌随即作废
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, &ValidationError{Field: "refresh_token", Reason: "刷新令牌无效或已过期"}
	}

	jti := claims.RegisteredClaims.ID
	userID, err := s.rdb.Get(ctx, refreshKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return nil, &ValidationError{Field: "refresh_token", Reason: "刷新令牌已被吊销"}
	}
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}

	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "用户", ID: userID}
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, &ValidationError{Field: "refresh_token", Reason: "账号已停用"}
	}

	// 旋转：旧 jti 作废后再签发新对
	if err := s.rdb.Del(ctx, refreshKeyPrefix+jti).Err(); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issueTokenPair(ctx, user)
}

// Logout 吊销刷新令牌
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		// 过期令牌无需吊销
		return nil
	}
	return s.rdb.Del(ctx, refreshKeyPrefix+claims.RegisteredClaims.ID).Err()
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	accessExpire := s.cfg.JWT.AccessTokenExpire
	refreshExpire := s.cfg.JWT.RefreshTokenExpire

	accessClaims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpire)),
			ID:        uuid.New().String(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJTI := uuid.New().String()
	refreshClaims := middleware.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpire)),
			ID:        refreshJTI,
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.rdb.Set(ctx, refreshKeyPrefix+refreshJTI, user.ID, refreshExpire).Err(); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessExpire.Seconds()),
	}, nil
}

// EnsureAdmin 用户表为空时初始化管理员账号，
// 初始密码取 ADMIN_PASSWORD 环境变量
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	count, err := s.userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	return s.userRepo.Create(&entity.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		PasswordHash: string(hash),
		Name:         "系统管理员",
		Role:         entity.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
