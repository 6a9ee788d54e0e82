package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/vtnhan03/final-be/internal/common"
)

const msgInternal = "Internal server error"

type errorResponse struct {
	Detail any `json:"detail"`
}

// fieldError is one entry of a 422 response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch common.KindOf(err) {
	case common.ErrorValidation, common.ErrorPrecondition:
		return http.StatusBadRequest
	case common.ErrorConflict:
		return http.StatusConflict
	case common.ErrorUnauthorized:
		return http.StatusUnauthorized
	case common.ErrorNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders a service failure. Domain failures carry their own
// message; anything else is logged and answered with a generic 500.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, errorResponse{Detail: msgInternal})
		return
	}

	var de *common.Error
	errors.As(err, &de)
	c.AbortWithStatusJSON(status, errorResponse{Detail: de.Message()})
}

// bind decodes the JSON body into obj. Malformed bodies and failed binding
// rules are answered with 422 and false is returned.
func (s *HTTPServer) bind(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	s.logger.Warn(c.Request.Context(), "invalid request body", "path", c.FullPath(), "error", err)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Detail: describeBindError(err)})
	return false
}

func describeBindError(err error) any {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError{Field: fe.Field(), Message: ruleMessage(fe)})
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "Malformed JSON body"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Field %s must be of type %s", typeErr.Field, typeErr.Type)
	case errors.Is(err, io.EOF):
		return "Request body is required"
	}
	return "Invalid request body"
}

var tagNameOnce sync.Once

// useJSONFieldNames makes validation errors report the json tag of a field
// instead of its Go name.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
