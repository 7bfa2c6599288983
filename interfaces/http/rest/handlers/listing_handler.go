package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/pkg/common"
	pkgerrors "listingsvc/pkg/errors"
	"listingsvc/pkg/utils"
)

// maxBodyBytes bounds mutation request bodies
const maxBodyBytes = 1 << 20

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	dataCache *caching.DataCache
	service   *listings.Service
	logger    *zap.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(dataCache *caching.DataCache, service *listings.Service, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		dataCache: dataCache,
		service:   service,
		logger:    logger,
	}
}

// CacheInfo describes how a list response was served
type CacheInfo struct {
	Key        string `json:"key"`
	Source     string `json:"source"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Hit        *bool  `json:"hit,omitempty"`
}

// ListResponse is the JSON body of the collection endpoints
type ListResponse struct {
	Items     interface{} `json:"items"`
	Count     int         `json:"count"`
	CacheInfo CacheInfo   `json:"cache_info"`
}

// CreateListingRequest represents the request body for creating a listing
type CreateListingRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Price       string `json:"price" validate:"required"`
	Location    string `json:"location" validate:"required,min=1,max=200"`
}

// UpdateListingRequest represents the request body for updating a listing
type UpdateListingRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *string `json:"price,omitempty"`
	Location    *string `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
}

// CreateListingResponse represents the response for creating a listing
type CreateListingResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// ListListings handles GET /listings. The route is additionally wrapped by
// the response cache, making this the dual-layer read path.
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	snapshots, hit, err := h.dataCache.GetAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list listings", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	h.respondJSON(w, http.StatusOK, ListResponse{
		Items:     snapshots,
		Count:     len(snapshots),
		CacheInfo: h.cacheInfo(hit, false),
	})
}

// ListListingsRaw handles GET /listings/raw: the data cache alone, no
// response caching, with an explicit hit indicator. It reflects
// invalidation immediately.
func (h *ListingHandler) ListListingsRaw(w http.ResponseWriter, r *http.Request) {
	snapshots, hit, err := h.dataCache.GetAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list listings", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	h.respondJSON(w, http.StatusOK, ListResponse{
		Items:     snapshots,
		Count:     len(snapshots),
		CacheInfo: h.cacheInfo(hit, true),
	})
}

// CreateListing handles POST /listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid price format")
		return
	}

	created, err := h.service.Create(r.Context(), listings.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Location:    req.Location,
	})
	if err != nil {
		h.logger.Error("Failed to create listing", zap.Error(err))
		h.respondServiceError(w, err, "Failed to create listing")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateListingResponse{
		ID:        created.ID().String(),
		Message:   "Listing created successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// UpdateListing handles PUT /listings/{listingID}
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	params := listings.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid price format")
			return
		}
		params.Price = &price
	}

	if _, err := h.service.Update(r.Context(), id, params); err != nil {
		h.logger.Error("Failed to update listing",
			zap.String("listingID", id.String()),
			zap.Error(err),
		)
		h.respondServiceError(w, err, "Failed to update listing")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Listing updated successfully",
		"id":      id.String(),
	})
}

// DeleteListing handles DELETE /listings/{listingID}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete listing",
			zap.String("listingID", id.String()),
			zap.Error(err),
		)
		h.respondServiceError(w, err, "Failed to delete listing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *ListingHandler) cacheInfo(hit, includeHit bool) CacheInfo {
	info := CacheInfo{
		Key:        caching.AllListingsKey,
		Source:     "database",
		TTLSeconds: int64(h.dataCache.TTL().Seconds()),
	}
	if hit {
		info.Source = "cache"
	}
	if includeHit {
		info.Hit = &hit
	}
	return info
}

func (h *ListingHandler) listingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "listingID")
	if raw == "" {
		h.respondError(w, http.StatusBadRequest, "Listing ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid listing ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ListingHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case pkgerrors.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, "Listing not found")
	case pkgerrors.IsValidation(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *ListingHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *ListingHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
