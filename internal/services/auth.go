package services

import (
  "context"
  "crypto/rand"
  "encoding/hex"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/types"
  "github.com/medibot-org/medibot-backend/internal/utils"
)

type AuthService interface {
  Register(ctx context.Context, user *types.User, password string) (*types.User, string, string, error)
  Login(ctx context.Context, email, password string) (*types.User, string, string, error)
  Refresh(ctx context.Context, refreshToken string) (string, error)
  Logout(ctx context.Context, refreshToken string) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db               *gorm.DB
  log              *logger.Logger
  userRepo         repos.UserRepo
  refreshTokenRepo repos.RefreshTokenRepo
  jwtSecret        []byte
  accessTTL        time.Duration
  refreshTTL       time.Duration
}

type jwtClaims struct {
  jwt.RegisteredClaims
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  refreshTokenRepo repos.RefreshTokenRepo,
  jwtSecret string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := baseLog.With("service", "AuthService")
  return &authService{
    db:               db,
    log:              serviceLog,
    userRepo:         userRepo,
    refreshTokenRepo: refreshTokenRepo,
    jwtSecret:        []byte(jwtSecret),
    accessTTL:        accessTTL,
    refreshTTL:       refreshTTL,
  }
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

func (as *authService) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
  if as.db == nil {
    return fn(nil)
  }
  return as.db.WithContext(ctx).Transaction(fn)
}

func (as *authService) Register(ctx context.Context, user *types.User, password string) (*types.User, string, string, error) {
  utils.NormalizeUserFields(ctx, user)
  if err := utils.ValidateSignupFields(ctx, as.log, user, password); err != nil {
    return nil, "", "", err
  }
  exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return nil, "", "", errordata.Storage("failed to check email", err)
  }
  if exists {
    as.log.Warn("Signup attempted with an already registered email", "email", user.Email)
    return nil, "", "", errordata.Validation("email already registered", user.Email)
  }
  if err := utils.HashPassword(ctx, as.log, user, password); err != nil {
    return nil, "", "", err
  }

  var accessToken, refreshToken string
  err = as.transaction(ctx, func(tx *gorm.DB) error {
    created, cErr := as.userRepo.Create(ctx, tx, []*types.User{user})
    if cErr != nil {
      return errordata.Storage("failed to create user", cErr)
    }
    user = created[0]
    accessToken, refreshToken, cErr = as.issueTokens(ctx, tx, user.ID)
    return cErr
  })
  if err != nil {
    return nil, "", "", err
  }
  as.log.Info("Successfully registered user :)", "userID", user.ID)
  return user, accessToken, refreshToken, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, string, error) {
  users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return nil, "", "", errordata.Storage("failed to look up user", err)
  }
  if len(users) == 0 {
    as.log.Warn("Login attempted with an unknown email", "email", email)
    return nil, "", "", errordata.Auth("invalid email or password")
  }
  user := users[0]
  if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
    as.log.Warn("Login attempted with a wrong password", "userID", user.ID)
    return nil, "", "", errordata.Auth("invalid email or password")
  }

  var accessToken, refreshToken string
  err = as.transaction(ctx, func(tx *gorm.DB) error {
    var tErr error
    accessToken, refreshToken, tErr = as.issueTokens(ctx, tx, user.ID)
    return tErr
  })
  if err != nil {
    return nil, "", "", err
  }
  as.log.Info("Successfully logged user in :)", "userID", user.ID)
  return user, accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
  rows, err := as.refreshTokenRepo.GetByTokens(ctx, nil, []string{refreshToken})
  if err != nil {
    return "", errordata.Storage("failed to look up refresh token", err)
  }
  if len(rows) == 0 {
    return "", errordata.Auth("invalid or expired refresh token")
  }
  row := rows[0]
  // Expired rows stay in place; they only ever fail validation here.
  if time.Now().After(row.ExpiresAt) {
    return "", errordata.Auth("invalid or expired refresh token")
  }
  accessToken, err := as.signAccessToken(row.UserID)
  if err != nil {
    return "", err
  }
  as.log.Info("Successfully refreshed access token :)", "userID", row.UserID)
  return accessToken, nil
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
  rows, err := as.refreshTokenRepo.GetByTokens(ctx, nil, []string{refreshToken})
  if err != nil {
    return errordata.Storage("failed to look up refresh token", err)
  }
  if len(rows) == 0 {
    return nil
  }
  if err := as.refreshTokenRepo.FullDeleteByTokens(ctx, nil, rows); err != nil {
    return errordata.Storage("failed to delete refresh token", err)
  }
  as.log.Info("Successfully logged user out :)", "userID", rows[0].UserID)
  return nil
}

// SetContextFromToken validates the bearer token and stashes the caller
// identity on the request context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &jwtClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
    }
    return as.jwtSecret, nil
  })
  if err != nil || !token.Valid {
    return ctx, errordata.Auth("invalid or expired access token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, errordata.Auth("invalid or expired access token")
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (string, string, error) {
  accessToken, err := as.signAccessToken(userID)
  if err != nil {
    return "", "", err
  }
  refreshToken, err := randomToken()
  if err != nil {
    return "", "", err
  }
  row := &types.RefreshToken{
    UserID:    userID,
    Token:     refreshToken,
    ExpiresAt: time.Now().Add(as.refreshTTL),
  }
  if _, err := as.refreshTokenRepo.Create(ctx, tx, []*types.RefreshToken{row}); err != nil {
    return "", "", errordata.Storage("failed to store refresh token", err)
  }
  return accessToken, refreshToken, nil
}

func (as *authService) signAccessToken(userID uuid.UUID) (string, error) {
  now := time.Now()
  claims := jwtClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   userID.String(),
      IssuedAt:  jwt.NewNumericDate(now),
      ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString(as.jwtSecret)
  if err != nil {
    as.log.Error("failed to sign access token", "error", err)
    return "", errordata.Storage("failed to sign access token", err)
  }
  return signed, nil
}

func randomToken() (string, error) {
  buf := make([]byte, 32)
  if _, err := rand.Read(buf); err != nil {
    return "", errordata.Storage("failed to generate refresh token", err)
  }
  return hex.EncodeToString(buf), nil
}
