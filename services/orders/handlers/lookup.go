// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/datatypes"
	"github.com/AleutianAI/OrderRecords/services/orders/plan"
	"github.com/AleutianAI/OrderRecords/services/orders/sprint"
)

// CalendarSource exposes the window calendar and the current date.
type CalendarSource interface {
	Calendar() sprint.Calendar
	Today() time.Time
}

// HandleResolveSprint serves GET /api/sprints/resolve?date=yyyy-MM-dd.
// Without a date the current window is returned.
func HandleResolveSprint(src CalendarSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := src.Today()
		if raw := c.Query("date"); raw != "" {
			parsed, err := dates.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: InvalidDateMessage})
				return
			}
			d = parsed
		}

		cal := src.Calendar()
		w := cal.Window(cal.NumberForDate(d))
		c.JSON(http.StatusOK, datatypes.SprintResponse{
			Date:   dates.Format(d),
			Name:   w.Name,
			Number: w.Number,
			Start:  dates.Format(w.Start),
			End:    dates.Format(w.End),
		})
	}
}

// HandleClassifyPlan serves GET /api/plans/classify?orderId=.
func HandleClassifyPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := strings.TrimSpace(c.Query("orderId"))
		if orderID == "" {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "orderId is required"})
			return
		}
		c.JSON(http.StatusOK, datatypes.PlanResponse{OrderID: orderID, Plan: plan.Classify(orderID)})
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
