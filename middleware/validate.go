// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidJSON is returned by DecodeAndValidate for undecodable bodies.
var ErrInvalidJSON = errors.New("invalid JSON")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeAndValidate parses the JSON body into v and checks its validate tags.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := ParseJSONBody(r, v); err != nil {
		return ErrInvalidJSON
	}
	return validate.Struct(v)
}

// ValidationMessage turns a DecodeAndValidate error into a client message.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if errors.Is(err, ErrInvalidJSON) {
			return "Invalid JSON"
		}
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
