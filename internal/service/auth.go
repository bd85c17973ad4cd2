package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
)

// Claims JWT 声明，只携带账号 ID
type Claims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

// SignupInput 注册请求
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput 登录请求
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token string               `json:"token"`
	User  model.AccountSummary `json:"user"`
}

// AuthService 账号与会话
type AuthService struct {
	accounts *repository.AccountRepository
	secret   []byte
	expiry   time.Duration
	log      *logrus.Entry
}

// NewAuthService 创建认证服务
func NewAuthService(accounts *repository.AccountRepository, secret string, expiry time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		secret:   []byte(secret),
		expiry:   expiry,
		log:      log.WithField("component", "auth"),
	}
}

// Register 注册并立即签发 token
func (s *AuthService) Register(ctx context.Context, in SignupInput) (string, error) {
	if err := validateStruct(in); err != nil {
		return "", err
	}

	existing, err := s.accounts.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrDuplicateEmail
	}

	account, err := s.accounts.Create(ctx, in.Email, in.Password)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// 并发注册时由唯一索引兜底
		return "", ErrDuplicateEmail
	}
	if err != nil {
		return "", err
	}

	s.log.WithField("account_id", account.ID).Info("account registered")
	return s.issueToken(account.ID, s.expiry)
}

// Authenticate 校验邮箱和密码
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if account == nil || !s.accounts.CheckPassword(account, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(account.ID, s.expiry)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: account.Summary()}, nil
}

// VerifySession 校验 token 并返回账号 ID
// 缺失、格式错误、过期、签名不符都返回 ErrUnauthenticated
func (s *AuthService) VerifySession(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return "", ErrUnauthenticated
	}
	return claims.AccountID, nil
}

// ResolveAccount 根据 token 中的账号 ID 取出账号
func (s *AuthService) ResolveAccount(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountGone
	}
	return account, nil
}

func (s *AuthService) issueToken(accountID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
