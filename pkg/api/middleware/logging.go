/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeforge/storeforge/pkg/logger/log"
)

func HandleLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		log.Infof(
			"Request: Method=%s | Path=%s | Status=%d | IP=%s | Duration=%v",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(startTime),
		)
	}
}
