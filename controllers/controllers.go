// Package controllers holds the gin handlers. Handlers bind and validate the
// request, call a service and write a JSON envelope.
package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/middleware"
	"ecommerce-api/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 5 * time.Second

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom rules to gin's validator and makes
// validation errors name fields by their JSON keys.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobilePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.With("op", "controllers.respondError").Error("request failed",
			"request_id", middleware.RequestID(c),
			"path", c.FullPath(),
			"err", err,
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(kind.Status(), gin.H{
		"success": false,
		"message": apperr.Message(err),
	})
}

// bindError turns a binding failure into a 400 naming the first bad field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.BadRequest(fe.Field() + " is required")
		case "email":
			return apperr.BadRequest("email is invalid")
		case "mobile":
			return apperr.BadRequest("mobile is invalid")
		case "min":
			return apperr.BadRequest(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			return apperr.BadRequest(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "gt", "gte":
			return apperr.BadRequest(fmt.Sprintf("%s must be %s %s", fe.Field(), comparison(fe.Tag()), fe.Param()))
		case "oneof":
			return apperr.BadRequest(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		}
		return apperr.BadRequest(fe.Field() + " is invalid")
	}
	return apperr.BadRequest("invalid request body")
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, error) {
	return parseID(c.Param(name), name)
}

func parseID(hex, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

func pageFrom(c *gin.Context) models.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultPageLimit)))
	return models.NewPage(number, limit)
}

// caller returns the identity set by middleware.Authenticate.
func caller(c *gin.Context) (primitive.ObjectID, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return primitive.NilObjectID, apperr.ErrMissingToken
	}
	return id.UserID(), nil
}

func optionalID(hex *string) (*primitive.ObjectID, error) {
	if hex == nil || *hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		return nil, apperr.BadRequest("invalid id " + strconv.Quote(*hex))
	}
	return &id, nil
}

func respond(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}
