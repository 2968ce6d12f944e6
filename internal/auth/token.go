package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/internal/constants"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/log"
	"github.com/Alturino/gearshare/internal/otel"
)

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (c Claims) Actor() (Actor, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: failed parsing subject=%s", inErrors.ErrTokenInvalid, c.Subject)
	}
	return Actor{UserID: userID, Role: c.Role}, nil
}

type Verifier struct {
	now       func() time.Time
	secretKey []byte
	ttl       time.Duration
}

func NewVerifier(secretKey string, ttl time.Duration) *Verifier {
	return &Verifier{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}
}

func (v *Verifier) Issue(c context.Context, userID uuid.UUID, role string) (string, error) {
	c, span := otel.Tracer.Start(c, "Verifier Issue")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Verifier Issue").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Trace().Msg("signing token")
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: role,
	})
	signed, err := token.SignedString(v.secretKey)
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Trace().Msg("signed token")

	return signed, nil
}

// Verify returns an error wrapping ErrUnauthenticated for any malformed, expired or forged token.
func (v *Verifier) Verify(c context.Context, token string) (Claims, error) {
	c, span := otel.Tracer.Start(c, "Verifier Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Verifier Verify").
		Logger()

	if token == "" {
		err := fmt.Errorf("%w: %w", inErrors.ErrUnauthenticated, inErrors.ErrEmptyAuth)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Claims{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := Claims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return v.secretKey, nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		err = fmt.Errorf("%w: failed parsing claims with error=%w", inErrors.ErrUnauthenticated, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Claims{}, err
	}
	if !jwtToken.Valid {
		err = fmt.Errorf("%w: %w", inErrors.ErrUnauthenticated, inErrors.ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Claims{}, err
	}
	if claims.Subject == "" {
		err = fmt.Errorf("%w: %w", inErrors.ErrUnauthenticated, inErrors.ErrEmptySubject)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Claims{}, err
	}
	logger.Trace().Msg("parsed claims")

	return claims, nil
}

// TryDecode is the lenient variant of Verify used where a credential is optional.
func (v *Verifier) TryDecode(c context.Context, token string) *Claims {
	if token == "" {
		return nil
	}
	claims, err := v.Verify(c, token)
	if err != nil {
		return nil
	}
	return &claims
}
