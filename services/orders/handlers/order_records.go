// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers of the order records API.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/OrderRecords/pkg/logging"
	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/datatypes"
	"github.com/AleutianAI/OrderRecords/services/orders/ledger"
	"github.com/AleutianAI/OrderRecords/services/orders/middleware"
)

// InvalidDateMessage is the error text for an unparseable request date.
const InvalidDateMessage = "Invalid date format. Use yyyy-MM-dd"

// OrderStorer appends order records.
type OrderStorer interface {
	StoreOrderRecord(ctx context.Context, req ledger.Request) (*ledger.Response, error)
}

// HandleStoreOrderRecord serves POST /api/order-records.
//
// # Description
//
// Binds and validates the JSON body, then runs the store cycle. Responses:
//   - 201 with datatypes.OrderRecordResponse on success.
//   - 400 for a malformed body, failed validation or an invalid date.
//   - 500 for storage failures. The message names the failed step; the
//     underlying cause is logged, not returned.
func HandleStoreOrderRecord(svc OrderStorer, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.OrderRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body", Details: []string{err.Error()}})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "validation failed", Details: datatypes.ValidationDetails(err)})
			return
		}

		requestID := middleware.GetRequestID(c)
		resp, err := svc.StoreOrderRecord(c.Request.Context(), ledger.Request{
			OrderID:       req.OrderID,
			DirectoryPath: req.DirectoryPath,
			Environment:   req.Env,
			Date:          req.Date,
			RequestID:     requestID,
		})
		if err != nil {
			status, body := errorResponse(err)
			if status >= http.StatusInternalServerError {
				logger.Error("store order record failed", "request_id", requestID, "error", err)
			}
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusCreated, datatypes.OrderRecordResponse{
			Message:  resp.Message,
			FilePath: resp.FilePath,
			OrderID:  resp.OrderID,
			StoredAt: dates.Format(resp.StoredAt),
		})
	}
}

// errorResponse maps a store error to its HTTP status and body.
func errorResponse(err error) (int, datatypes.ErrorResponse) {
	var se *ledger.StorageError
	switch {
	case errors.Is(err, ledger.ErrInvalidDate):
		return http.StatusBadRequest, datatypes.ErrorResponse{Error: InvalidDateMessage}
	case errors.Is(err, ledger.ErrInvalidRequest):
		return http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()}
	case errors.As(err, &se):
		return http.StatusInternalServerError, datatypes.ErrorResponse{Error: storageMessage(se)}
	default:
		return http.StatusInternalServerError, datatypes.ErrorResponse{Error: "Failed to store order details"}
	}
}

func storageMessage(se *ledger.StorageError) string {
	switch se.Op {
	case ledger.OpResolveDirectory:
		return "Unable to create or access directory: " + se.Path
	case ledger.OpLoad:
		return "Unable to read existing Excel file: " + se.Path
	default:
		return "Failed to store order details"
	}
}
