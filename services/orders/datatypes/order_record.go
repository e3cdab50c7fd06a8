// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the JSON bodies of the order records API.
package datatypes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var orderValidate *validator.Validate

// isoDatePattern is the accepted request date shape. Calendar validity is
// checked later, when the date is parsed.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func init() {
	orderValidate = validator.New()
	_ = orderValidate.RegisterValidation("notblank", validators.NotBlank)
	_ = orderValidate.RegisterValidation("isodate", validateISODate)
}

// validateISODate accepts yyyy-MM-dd shaped strings after trimming. A blank
// value passes and means today.
func validateISODate(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s == "" || isoDatePattern.MatchString(s)
}

// =============================================================================
// Order Record Types
// =============================================================================

// OrderRecordRequest is the body of POST /api/order-records.
//
// # Fields
//
//   - OrderID: Required, not blank. Any length.
//   - DirectoryPath: Required, not blank. Folder holding the document.
//   - Env: Required, not blank. Stored trimmed.
//   - Date: Optional yyyy-MM-dd, trimmed. Today when omitted or blank.
//
// # Examples
//
//	{"orderId":"NEW-55-ABC","directoryPath":"/tmp/x","env":"prod","date":"2026-01-10"}
type OrderRecordRequest struct {
	OrderID       string `json:"orderId" validate:"required,notblank"`
	DirectoryPath string `json:"directoryPath" validate:"required,notblank"`
	Env           string `json:"env" validate:"required,notblank"`
	Date          string `json:"date" validate:"omitempty,isodate"`
}

// Validate checks the request against its struct tags.
func (r *OrderRecordRequest) Validate() error {
	return orderValidate.Struct(r)
}

// OrderRecordResponse is returned with 201 Created.
type OrderRecordResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	OrderID  string `json:"orderId"`
	StoredAt string `json:"storedAt"`
}

// =============================================================================
// Lookup Types
// =============================================================================

// SprintResponse is returned by GET /api/sprints/resolve.
type SprintResponse struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// PlanResponse is returned by GET /api/plans/classify.
type PlanResponse struct {
	OrderID string `json:"orderId"`
	Plan    string `json:"plan"`
}

// ErrorResponse is the body of every 4xx and 5xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// =============================================================================
// Validation messages
// =============================================================================

// ValidationDetails renders validator errors as one line per field, using
// the JSON field names. Other errors yield their message.
func ValidationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "isodate":
		return "Invalid date format. Use yyyy-MM-dd"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// jsonName maps a Go field name to its JSON name.
func jsonName(field string) string {
	switch field {
	case "OrderID":
		return "orderId"
	case "DirectoryPath":
		return "directoryPath"
	case "Env":
		return "env"
	case "Date":
		return "date"
	default:
		return strings.ToLower(field[:1]) + field[1:]
	}
}
