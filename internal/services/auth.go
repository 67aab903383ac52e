package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/pkg/ctxutil"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type AuthService interface {
	Register(ctx context.Context, patient *types.Patient) (*types.Patient, error)
	Login(ctx context.Context, email, password string) (string, *types.Patient, error)
	UpdateProfile(ctx context.Context, patientID uuid.UUID, input UpdateProfileInput) (*types.Patient, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

// UpdateProfileInput carries partial profile changes; empty fields keep
// their stored value.
type UpdateProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Timezone  string `json:"timezone"`
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	patientRepo  repos.PatientRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	patientRepo repos.PatientRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		patientRepo:  patientRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Register(ctx context.Context, patient *types.Patient) (*types.Patient, error) {
	patient.Email = strings.ToLower(strings.TrimSpace(patient.Email))
	patient.FirstName = strings.TrimSpace(patient.FirstName)
	patient.LastName = strings.TrimSpace(patient.LastName)

	if patient.Email == "" || !strings.Contains(patient.Email, "@") {
		return nil, fmt.Errorf("%w: valid email required", errs.ErrInvalidArgument)
	}
	if len(patient.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", errs.ErrInvalidArgument)
	}
	if patient.FirstName == "" {
		return nil, fmt.Errorf("%w: first name required", errs.ErrInvalidArgument)
	}
	if tz := strings.TrimSpace(patient.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", errs.ErrInvalidArgument, tz)
		}
		patient.Timezone = tz
	}
	if patient.Role == "" {
		patient.Role = types.RolePatient
	}
	if !types.ValidRole(patient.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", errs.ErrInvalidArgument, patient.Role)
	}

	if existing, err := as.patientRepo.GetByEmail(ctx, nil, patient.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", errs.ErrInvalidArgument)
	} else if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(patient.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	patient.Password = string(hashed)
	patient.ID = uuid.New()

	created, err := as.patientRepo.Create(ctx, nil, patient)
	if err != nil {
		return nil, err
	}
	as.log.Info("Patient registered", "patient_id", created.ID)
	return created, nil
}

func (as *authService) UpdateProfile(ctx context.Context, patientID uuid.UUID, input UpdateProfileInput) (*types.Patient, error) {
	patient, err := as.patientRepo.GetByID(ctx, nil, patientID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.FirstName); v != "" {
		patient.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		patient.LastName = v
	}
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", errs.ErrInvalidArgument, tz)
		}
		patient.Timezone = tz
	}

	if err := as.patientRepo.Update(ctx, nil, patient); err != nil {
		return nil, err
	}
	as.log.Info("Profile updated", "patient_id", patientID)
	return patient, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.Patient, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	patient, err := as.patientRepo.GetByEmail(ctx, nil, email)
	if errors.Is(err, errs.ErrNotFound) {
		return "", nil, errs.ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(password)) != nil {
		return "", nil, errs.ErrUnauthorized
	}

	token, err := as.generateAccessToken(patient)
	if err != nil {
		return "", nil, err
	}
	return token, patient, nil
}

func (as *authService) generateAccessToken(patient *types.Patient) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   patient.ID.String(),
		"email": patient.Email,
		"role":  patient.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// SetContextFromToken validates a bearer token and attaches the
// authenticated identity to the context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, errs.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, errs.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	patientID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, errs.ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		// Tokens minted before roles existed belong to patients.
		role = types.RolePatient
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		PatientID: patientID,
		Email:     email,
		Role:      role,
	}), nil
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }
