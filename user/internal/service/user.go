package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/internal/validate"
	"github.com/Alturino/gearshare/user/internal/otel"
	"github.com/Alturino/gearshare/user/pkg/request"
	"github.com/Alturino/gearshare/user/pkg/response"
)

const uniqueViolated = "23505"

var errEmailTaken = fmt.Errorf("%w: email already exist", inErrors.ErrConflict)

type UserService struct {
	queries  *repository.Queries
	verifier *auth.Verifier
	cost     int
}

func NewUserService(queries *repository.Queries, verifier *auth.Verifier) UserService {
	return UserService{queries: queries, verifier: verifier, cost: bcrypt.DefaultCost}
}

func (u UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return "", fmt.Errorf("failed hashing password with error=%w", err)
	}
	return string(hashed), nil
}

func (u UserService) Register(c context.Context, param request.Register) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	param.Email = strings.TrimSpace(param.Email)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "checking email").Logger()
	logger.Trace().Msg("checking email")
	_, err := u.queries.FindUserByEmail(c, param.Email)
	switch {
	case err == nil:
		err = errEmailTaken
	case errors.Is(err, pgx.ErrNoRows):
		err = nil
	default:
		err = fmt.Errorf("failed finding user by email with error=%w", err)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	hashed, err := u.hash(param.Password)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Trace().Msg("inserting user")
	user, err := u.queries.CreateUser(c, repository.CreateUserParams{
		Username:    param.Username,
		Email:       param.Email,
		Password:    hashed,
		Role:        auth.RoleUser,
		PhoneNumber: param.PhoneNumber,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolated {
			err = errEmailTaken
		} else {
			err = fmt.Errorf("failed inserting user with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("registered user")

	return user.Response(), nil
}

// Login answers the same ErrUnauthenticated for an unknown email and a wrong password.
func (u UserService) Login(c context.Context, param request.LoginRequest) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	param = param.Normalized()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Trace().Msg("finding user by email")
	user, err := u.queries.FindUserByEmail(c, param.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: invalid email or password", inErrors.ErrUnauthenticated)
	} else if err != nil {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Trace().Msg("verifying password")
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password)); err != nil {
		err = fmt.Errorf("%w: invalid email or password", inErrors.ErrUnauthenticated)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	if user.Blocked {
		err = fmt.Errorf("%w: user is blocked", inErrors.ErrForbidden)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "issuing token").Logger()
	token, err := u.verifier.Issue(c, user.ID, user.Role)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("logged in")

	return response.Login{Token: token, User: user.Response()}, nil
}

func (u UserService) SetAdmin(c context.Context, actor auth.Actor, param request.SetAdmin) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService SetAdmin")
	defer span.End()

	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Str(log.KeyTag, "UserService SetAdmin").Msg(err.Error())
		return response.User{}, err
	}
	return u.PromoteAdmin(c, param.Email)
}

// PromoteAdmin has no caller check; the CLI uses it to bootstrap the first admin.
func (u UserService) PromoteAdmin(c context.Context, email string) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService PromoteAdmin")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService PromoteAdmin").
		Str(log.KeyEmail, email).
		Logger()

	if err := validate.Struct(c, request.SetAdmin{Email: email}); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating role").Logger()
	logger.Trace().Msg("updating role")
	user, err := u.queries.UpdateUserRoleByEmail(c, repository.UpdateUserRoleByEmailParams{
		Email: strings.TrimSpace(email),
		Role:  auth.RoleAdmin,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: user %s", inErrors.ErrNotFound, email)
	} else if err != nil {
		err = fmt.Errorf("failed updating role with error=%w", err)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("promoted user to admin")

	return user.Response(), nil
}

func (u UserService) ListUsers(c context.Context, actor auth.Actor) ([]response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService ListUsers")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserService ListUsers").Logger()

	if err := auth.RequireAdmin(actor); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding users").Logger()
	users, err := u.queries.FindUsers(c)
	if err != nil {
		err = fmt.Errorf("failed finding users with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	res := make([]response.User, 0, len(users))
	for _, user := range users {
		res = append(res, user.Response())
	}
	logger.Info().Int("count", len(res)).Msg("found users")

	return res, nil
}

// editableTarget loads a user an admin may modify; other admins are off limits.
func (u UserService) editableTarget(c context.Context, actor auth.Actor, id uuid.UUID) (repository.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return repository.User{}, err
	}
	target, err := u.queries.FindUserByID(c, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.User{}, fmt.Errorf("%w: user %s", inErrors.ErrNotFound, id)
	}
	if err != nil {
		return repository.User{}, fmt.Errorf("failed finding user with error=%w", err)
	}
	if target.Role == auth.RoleAdmin {
		return repository.User{}, fmt.Errorf("%w: admin accounts cannot be modified", inErrors.ErrForbidden)
	}
	return target, nil
}

func (u UserService) UpdateUser(
	c context.Context,
	actor auth.Actor,
	id uuid.UUID,
	param request.UpdateUser,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService UpdateUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService UpdateUser").
		Str(log.KeyUserID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating param").Logger()
	if err := validate.Struct(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding target").Logger()
	if _, err := u.editableTarget(c, actor, id); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	arg := repository.UpdateUserParams{
		ID:          id,
		Username:    repository.TextFromPtr(param.Username),
		PhoneNumber: repository.TextFromPtr(param.PhoneNumber),
	}
	if param.Blocked != nil {
		arg.Blocked = pgtype.Bool{Bool: *param.Blocked, Valid: true}
	}
	if param.Password != nil {
		hashed, err := u.hash(*param.Password)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.User{}, err
		}
		arg.Password = repository.TextFromString(hashed)
	}

	logger = logger.With().Str(log.KeyProcess, "updating user").Logger()
	logger.Trace().Msg("updating user")
	user, err := u.queries.UpdateUser(c, arg)
	if err != nil {
		err = fmt.Errorf("failed updating user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("updated user")

	return user.Response(), nil
}

func (u UserService) DeleteUser(c context.Context, actor auth.Actor, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "UserService DeleteUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService DeleteUser").
		Str(log.KeyUserID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding target").Logger()
	if _, err := u.editableTarget(c, actor, id); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting user").Logger()
	deleted, err := u.queries.DeleteUserByID(c, id)
	if err == nil && deleted == 0 {
		err = fmt.Errorf("%w: user %s", inErrors.ErrNotFound, id)
	} else if err != nil {
		err = fmt.Errorf("failed deleting user with error=%w", err)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted user")

	return nil
}
