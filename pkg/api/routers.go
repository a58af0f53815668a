/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/storeforge/storeforge/pkg/api/middleware"
)

// InitStoreRouters registers the store management API routes.
func InitStoreRouters(engine *gin.Engine, h *Handler) {
	engine.Use(middleware.HandleLogging(), middleware.CorsMiddleware())

	group := engine.Group("/api")
	{
		group.GET("stores", h.ListStores)
		group.POST("stores", h.CreateStore)
		group.DELETE("stores/:name", h.DeleteStore)
		group.GET("health", h.Health)
	}
}
