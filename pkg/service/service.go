// Package service implements the storefront operations on top of the
// repository contracts. Every exported method returns errors classified by
// package errs.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// userWriteAttempts bounds how often a read-modify-write of a user document is
// re-run after losing the version check.
const userWriteAttempts = 5

// OrderNotifier receives order lifecycle events.
type OrderNotifier interface {
	OrderPlaced(userID string, order models.Order)
	OrderDelivered(userID string, order models.Order)
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(string, models.Order)    {}
func (nopNotifier) OrderDelivered(string, models.Order) {}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError turns a validator failure into a Validation error naming the
// first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Validationf("invalid input")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.Validationf("%s is required", fe.Field())
	case "email":
		return errs.Validationf("%s must be a valid email", fe.Field())
	case "min":
		return errs.Validationf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return errs.Validationf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return errs.Validationf("%s must be %s or more", fe.Field(), fe.Param())
	default:
		return errs.Validationf("%s is invalid", fe.Field())
	}
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// parseID maps a malformed id to NotFound: an id that cannot exist does not resolve.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.NotFoundf("%s not found", what)
	}
	return oid, nil
}

// internal wraps an unclassified store error. Classified errors pass through.
func internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Wrap(errs.Internal, err, msg)
}

// mutateUser re-reads the user, applies fn and saves the result with a version
// check. fn reports whether it changed anything; unchanged users are not written.
// A lost version check re-runs the whole cycle.
func mutateUser(ctx context.Context, users repository.UserStore, id primitive.ObjectID, fn func(u *models.User) (bool, error)) (*models.User, error) {
	var result *models.User
	err := retry.Do(
		func() error {
			u, err := users.GetUser(ctx, id)
			if err != nil {
				return err
			}
			changed, err := fn(u)
			if err != nil {
				return err
			}
			if changed {
				if err := users.SaveUser(ctx, u); err != nil {
					return err
				}
			}
			result = u
			return nil
		},
		retry.Attempts(userWriteAttempts),
		retry.Delay(5*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, repository.ErrVersionConflict)
		}),
	)
	if errors.Is(err, repository.ErrVersionConflict) {
		return nil, errs.Wrap(errs.Internal, err, fmt.Sprintf("user %s is being modified concurrently", id.Hex()))
	}
	if err != nil {
		return nil, internal(err, "update user")
	}
	return result, nil
}

type auditor struct {
	store   repository.AuditStore
	service string
	logger  *zap.Logger
}

// record writes an audit entry. Failures are logged and otherwise ignored.
func (a *auditor) record(ctx context.Context, action, entityID string, data bson.M) {
	if a == nil || a.store == nil {
		return
	}
	err := a.store.CreateAuditLog(ctx, &models.AuditLog{
		Service:  a.service,
		Action:   action,
		EntityID: entityID,
		Data:     data,
	})
	if err != nil {
		a.logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
