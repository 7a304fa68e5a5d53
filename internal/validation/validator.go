// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package validation wraps a shared go-playground/validator instance with
// the rules used by the trigger API, converted DTOs and sync events:
//
//   - entitykind: a known entity kind ("wrestler", "show_type", ...)
//   - notionid: a Notion page id, with or without dashes
//
// Field names in messages come from json tags, so API clients see the
// names they sent:
//
//	if errs := validation.ValidateStruct(&req); errs != nil {
//	    apiErr := errs.APIError()
//	    rw.BadRequest(apiErr.Message, apiErr.Details)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/atwsync/internal/models"
)

// CodeValidation is the API error code for failed rules.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once

	notionID = regexp.MustCompile(`^[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}$`)
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Errors lists every failed rule of one struct. A nil Errors means valid.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError renders the errors as a VALIDATION_ERROR body. A single error
// keeps its field at the top of details; several are listed under "fields".
func (e Errors) APIError() *models.APIError {
	switch len(e) {
	case 0:
		return &models.APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		return &models.APIError{
			Code:    CodeValidation,
			Message: e[0].Message,
			Details: map[string]any{"field": e[0].Field, "rule": e[0].Rule},
		}
	default:
		return &models.APIError{
			Code:    CodeValidation,
			Message: e.Error(),
			Details: map[string]any{"fields": []FieldError(e)},
		}
	}
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("entitykind", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseKind(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("notionid", func(fl validator.FieldLevel) bool {
			return notionID.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(s any) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "", Rule: "invalid", Message: err.Error()}}
	}
	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param(), Message: message(fe)}
	}
	return out
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "entitykind":
		return field + " must be a known entity kind"
	case "notionid":
		return field + " must be a Notion page id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
