package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/email"
	"github.com/judiguard/judi_guard_server/internal/pkg/jwt"
	"github.com/judiguard/judi_guard_server/internal/pkg/oauth"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email is already registered")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email is not verified yet")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrInvalidOtp         = errors.New("verification code is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordlessUser   = errors.New("this account signs in with Google")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 30 * time.Minute
)

type AuthService struct {
	userRepo  *repository.UserRepository
	resetRepo *repository.PasswordResetRepository
	cfg       *config.Config

	googleOAuth *oauth.GoogleOAuth
	stateStore  *oauth.StateStore
	emailSvc    *email.Service

	// youtubeOpts lets tests point channel lookups at a fake API host.
	youtubeOpts []youtube.Option
}

func NewAuthService(
	userRepo *repository.UserRepository,
	resetRepo *repository.PasswordResetRepository,
	cfg *config.Config,
	stateStore *oauth.StateStore,
	emailSvc *email.Service,
	youtubeOpts ...youtube.Option,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		cfg:         cfg,
		googleOAuth: oauth.NewGoogleOAuth(&cfg.OAuth.Google),
		stateStore:  stateStore,
		emailSvc:    emailSvc,
		youtubeOpts: youtubeOpts,
	}
}

// Register creates an unverified account and emails a verification code.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	otp, err := generateOtp()
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	otpExpiry := time.Now().Add(otpTTL)

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &passwordStr,
		OtpCode:      &otp,
		OtpExpiresAt: &otpExpiry,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.sendOtpMail(user, otp)

	// Development convenience: skip email verification in debug mode.
	if s.cfg.Server.Mode == "debug" {
		user.IsVerified = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// VerifyOtp confirms the emailed code and activates the account.
func (s *AuthService) VerifyOtp(req *dto.VerifyOtpRequest) error {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if user.OtpCode == nil || user.OtpExpiresAt == nil ||
		*user.OtpCode != req.Otp || time.Now().After(*user.OtpExpiresAt) {
		return ErrInvalidOtp
	}

	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"is_verified":    true,
		"otp_code":       nil,
		"otp_expires_at": nil,
	})
}

// ResendOtp issues a fresh verification code for an unverified account.
func (s *AuthService) ResendOtp(req *dto.ResendOtpRequest) error {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := generateOtp()
	if err != nil {
		return err
	}
	otpExpiry := time.Now().Add(otpTTL)

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"otp_code":       otp,
		"otp_expires_at": otpExpiry,
	}); err != nil {
		return err
	}

	s.sendOtpMail(user, otp)
	return nil
}

// Login checks credentials and returns a signed JWT.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrPasswordlessUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  UserInfoFromModel(user),
	}, nil
}

// ForgotPassword issues a reset link. Unknown addresses are reported as
// not found so the handler can keep the response generic.
func (s *AuthService) ForgotPassword(req *dto.ForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := generateRandomToken(32)
	if err != nil {
		return err
	}

	// Only the newest token may be live at a time
	if err := s.resetRepo.InvalidateForUser(user.ID); err != nil {
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	if s.emailSvc != nil && s.cfg.Email.Enabled {
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.Frontend.BaseURL, token)
		if err := s.emailSvc.SendPasswordReset(user.Email, user.Username, resetLink); err != nil {
			log.Printf("Failed to send password reset email to user %d: %v", user.ID, err)
		}
	}

	return nil
}

// ResetPassword redeems a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	reset, err := s.resetRepo.GetByToken(req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !reset.Valid() {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	passwordStr := string(hashedPassword)
	if err := s.userRepo.UpdateFields(reset.UserID, map[string]interface{}{
		"password_hash": passwordStr,
	}); err != nil {
		return err
	}

	return s.resetRepo.MarkUsed(reset.ID)
}

// GoogleAuthURL starts the Google sign-in flow.
func (s *AuthService) GoogleAuthURL(ctx context.Context) (string, error) {
	state, err := s.stateStore.GenerateState(ctx, oauth.StateData{Flow: oauth.FlowSignin})
	if err != nil {
		return "", err
	}
	return s.googleOAuth.GetSigninAuthURL(state), nil
}

// GoogleCallback finishes sign-in: the Google account is matched to an
// existing user by Google ID, then by email, and a new verified account
// is created otherwise.
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*dto.LoginResponse, error) {
	data, err := s.stateStore.ValidateState(ctx, state)
	if err != nil {
		return nil, err
	}
	if data.Flow != oauth.FlowSignin {
		return nil, errors.New("state does not belong to the sign-in flow")
	}

	token, err := s.googleOAuth.ExchangeSignin(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	googleUser, err := s.googleOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateGoogleUser(googleUser)
	if err != nil {
		return nil, err
	}

	jwtToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: jwtToken,
		User:  UserInfoFromModel(user),
	}, nil
}

func (s *AuthService) findOrCreateGoogleUser(googleUser *oauth.GoogleUser) (*model.User, error) {
	user, err := s.userRepo.GetByGoogleID(googleUser.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link by email when the address already has a password account
	user, err = s.userRepo.GetByEmail(googleUser.Email)
	if err == nil {
		user.GoogleID = &googleUser.ID
		if user.AvatarURL == "" {
			user.AvatarURL = googleUser.Picture
		}
		user.IsVerified = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.uniqueUsername(googleUser.Name, googleUser.Email)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		Username:   username,
		Email:      googleUser.Email,
		GoogleID:   &googleUser.ID,
		AvatarURL:  googleUser.Picture,
		IsVerified: true, // Google already verified the address
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// YouTubeConnectURL starts the YouTube account-linking flow for an
// already authenticated user.
func (s *AuthService) YouTubeConnectURL(ctx context.Context, userID int64) (string, error) {
	state, err := s.stateStore.GenerateState(ctx, oauth.StateData{
		Flow:   oauth.FlowYouTube,
		UserID: userID,
	})
	if err != nil {
		return "", err
	}
	return s.googleOAuth.GetYouTubeAuthURL(state), nil
}

// YouTubeCallback stores the granted tokens and the linked channel on the
// user who started the flow.
func (s *AuthService) YouTubeCallback(ctx context.Context, state, code string) (*model.User, error) {
	data, err := s.stateStore.ValidateState(ctx, state)
	if err != nil {
		return nil, err
	}
	if data.Flow != oauth.FlowYouTube || data.UserID == 0 {
		return nil, errors.New("state does not belong to the youtube linking flow")
	}

	user, err := s.userRepo.GetByID(data.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token, err := s.googleOAuth.ExchangeYouTube(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	ytClient := youtube.NewClient(s.googleOAuth.YouTubeConfig().Client(ctx, token), s.youtubeOpts...)
	channel, err := ytClient.MyChannel(ctx)
	if err != nil {
		return nil, err
	}

	user.YouTubeAccessToken = &token.AccessToken
	if token.RefreshToken != "" {
		user.YouTubeRefreshToken = &token.RefreshToken
	}
	expiry := token.Expiry
	user.YouTubeTokenExpiresAt = &expiry
	user.YouTubeChannelID = channel.ID
	user.YouTubeChannelName = channel.Title

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DisconnectYouTube severs the YouTube link.
func (s *AuthService) DisconnectYouTube(ctx context.Context, userID int64) error {
	return s.userRepo.ClearYouTubeTokens(ctx, userID)
}

func (s *AuthService) sendOtpMail(user *model.User, otp string) {
	if s.emailSvc == nil || !s.cfg.Email.Enabled {
		log.Printf("Email disabled, OTP for user %d: %s", user.ID, otp)
		return
	}
	if err := s.emailSvc.SendOtp(user.Email, user.Username, otp); err != nil {
		log.Printf("Failed to send OTP email to user %d: %v", user.ID, err)
	}
}

func (s *AuthService) uniqueUsername(name, emailAddr string) (string, error) {
	base := name
	if base == "" {
		base = emailAddr
	}
	// Strip the domain part of an email-shaped base
	for i, r := range base {
		if r == '@' {
			base = base[:i]
			break
		}
	}
	if len(base) > 40 {
		base = base[:40]
	}

	candidate := base
	for i := 0; i < 10; i++ {
		exists, err := s.userRepo.ExistsByUsername(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", base, n.Int64())
	}
	return "", errors.New("could not derive a unique username")
}

// UserInfoFromModel shapes a user row for API responses.
func UserInfoFromModel(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		AvatarURL:          user.AvatarURL,
		IsVerified:         user.IsVerified,
		YouTubeConnected:   user.YouTubeConnected(),
		YouTubeChannelID:   user.YouTubeChannelID,
		YouTubeChannelName: user.YouTubeChannelName,
	}
}

func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateRandomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
