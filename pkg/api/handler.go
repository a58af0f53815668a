/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeforge/storeforge/pkg/orchestrator"
	"github.com/storeforge/storeforge/pkg/store"
)

// StoreService is the orchestrator surface the handlers consume.
type StoreService interface {
	Create(ctx context.Context, name, engine string) error
	List(ctx context.Context) []store.Record
	Delete(ctx context.Context, name string) error
}

// Handler serves the store management API.
type Handler struct {
	service StoreService
}

func NewHandler(service StoreService) *Handler {
	return &Handler{service: service}
}

// CreateStoreRequest is the POST /api/stores body.
type CreateStoreRequest struct {
	Name   string `json:"name"`
	Engine string `json:"engine"`
}

// ListStores handles listing all stores in the merged view.
// GET /api/stores
func (h *Handler) ListStores(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List(c.Request.Context()))
}

// CreateStore accepts a provisioning request. The response is returned
// before the multi-minute workflow runs; progress surfaces through the list
// endpoint.
// POST /api/stores
func (h *Handler) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and engine are required"})
		return
	}

	err := h.service.Create(c.Request.Context(), req.Name, req.Engine)
	if err != nil {
		var validationErr *orchestrator.ValidationError
		var conflictErr *orchestrator.ConflictError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case errors.As(err, &conflictErr):
			c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  string(store.StatusProvisioning),
		"message": fmt.Sprintf("Store %q is being provisioned. This may take several minutes.", req.Name),
		"name":    req.Name,
	})
}

// DeleteStore tears down a store's release and namespace.
// DELETE /api/stores/:name
func (h *Handler) DeleteStore(c *gin.Context) {
	name := c.Param("name")

	if err := h.service.Delete(c.Request.Context(), name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "deleted",
		"message": fmt.Sprintf("Store %q and all resources removed", name),
	})
}

// Health reports API liveness.
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
