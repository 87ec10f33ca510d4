package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 凭据无效（统一返回，不区分用户不存在和密码错误）
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// ErrLicenseInactive 租户许可证不可用
var ErrLicenseInactive = errors.New("租户许可证已暂停或过期")

// AuthService 认证服务
type AuthService struct {
	userRepo   *repository.UserRepository
	tenantRepo *repository.TenantRepository
	roleRepo   *repository.RoleRepository
	rdb        *redis.Client
	cfg        *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo *repository.UserRepository,
	tenantRepo *repository.TenantRepository,
	roleRepo *repository.RoleRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		roleRepo:   roleRepo,
		rdb:        rdb,
		cfg:        cfg,
	}
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Tenant   string `json:"tenant" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 租户用户登录
// 校验租户许可证状态：suspended/expired 的租户拒绝登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Tenant, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.Status != entity.UserStatusActive {
		return nil, nil, ErrInvalidCredentials
	}

	tenant, err := s.tenantRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("find tenant: %w", err)
	}
	if !s.licenseUsable(tenant) && user.Role != entity.RoleLicenseAdmin {
		return nil, nil, ErrLicenseInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("update last login: %w", err)
	}

	tokenPair, err := s.generateTokenPair(ctx, user, tenant.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	return user, tokenPair, nil
}

// licenseUsable 判断许可证是否可用
func (s *AuthService) licenseUsable(t *entity.Tenant) bool {
	if t.LicenseStatus != entity.LicenseStatusActive {
		return false
	}
	if t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt) {
		return false
	}
	return true
}

// generateTokenPair 生成Token对
func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User, tenantName string) (*TokenPair, error) {
	now := time.Now()
	jti := uuid.New().String()

	perms, err := s.permissionKeys(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	// Access Token
	accessClaims := jwt.MapClaims{
		"sub":    user.ID,
		"uid":    user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"tenant": user.TenantID,
		"tname":  tenantName,
		"roles":  []string{user.Role},
		"perms":  perms,
		"iss":    s.cfg.JWT.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":    jti,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	// Refresh Token
	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":    user.ID,
		"tenant": user.TenantID,
		"type":   "refresh",
		"iss":    s.cfg.JWT.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":    refreshJti,
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// 存储Refresh Token到Redis
	if s.rdb != nil {
		s.rdb.Set(ctx, "token:refresh:"+refreshJti, user.ID, s.cfg.JWT.RefreshTokenExpire)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// permissionKeys 返回用户角色放行的权限键列表
func (s *AuthService) permissionKeys(ctx context.Context, user *entity.User) ([]string, error) {
	allKeys := []string{
		entity.PermPurchasing, entity.PermExpenses, entity.PermRevenues,
		entity.PermReports, entity.PermSuppliers, entity.PermVets, entity.PermAdmin,
	}

	rp, err := s.roleRepo.FindByRole(ctx, user.TenantID, user.Role)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 文档缺失时默认全部放行
	perms := make([]string, 0, len(allKeys))
	for _, key := range allKeys {
		if rp.Allows(key) {
			perms = append(perms, key)
		}
	}
	return perms, nil
}

// RefreshToken 刷新Token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}

	jti, _ := claims["jti"].(string)
	tenantID, _ := claims["tenant"].(string)
	if s.rdb != nil {
		if _, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result(); err != nil {
			return nil, fmt.Errorf("refresh token expired or invalid")
		}
	}

	userID, _ := claims["sub"].(string)
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	// 删除旧的Refresh Token，单次使用
	if s.rdb != nil {
		s.rdb.Del(ctx, "token:refresh:"+jti)
	}

	return s.generateTokenPair(ctx, user, tenant.Name)
}

// Logout 登出，吊销刷新令牌
func (s *AuthService) Logout(ctx context.Context, refreshTokenString string) error {
	if s.rdb == nil || refreshTokenString == "" {
		return nil
	}

	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if jti, ok := claims["jti"].(string); ok {
			s.rdb.Del(ctx, "token:refresh:"+jti)
		}
	}
	return nil
}

// GetCurrentUser 获取当前用户
func (s *AuthService) GetCurrentUser(ctx context.Context, tenantID, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, tenantID, userID)
}

// ChangePassword 修改当前用户密码
func (s *AuthService) ChangePassword(ctx context.Context, tenantID, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("新密码至少8位")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}
