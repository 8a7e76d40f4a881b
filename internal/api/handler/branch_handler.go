package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"loan-monitor/internal/api/handler/dto"
	"loan-monitor/internal/domain/branch"
	"loan-monitor/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type BranchHandler struct {
	service branch.Service
	logger  *slog.Logger
}

func NewBranchHandler(s branch.Service, l *slog.Logger) *BranchHandler {
	if s == nil {
		panic("branch service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &BranchHandler{
		service: s,
		logger:  l.With("component", "BranchHandler"),
	}
}

func getBranchIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "branchID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: branchID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid branchID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// CreateBranch handles POST /branches
// @Summary Create a new branch
// @Description Creates a new branch record with a name and assigned loan officer.
// @Tags Branches
// @Accept json
// @Produce json
// @Param request body dto.CreateBranchRequest true "Branch creation request"
// @Success 201 {object} dto.BranchResponse "Branch successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /branches [post]
// @Security BearerAuth
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create branch request")

	var req dto.CreateBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Branch request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdBranch, err := h.service.CreateBranch(r.Context(), req.BranchName, req.LoanOfficer)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to create branch", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewBranchResponse(createdBranch)
	h.logger.InfoContext(r.Context(), "Branch created successfully", slog.Int64("branchID", resp.BranchID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetBranch handles GET /branches/{branchID}
// @Summary Retrieve branch details
// @Tags Branches
// @Produce json
// @Param branchID path int true "Branch ID" Minimum(1)
// @Success 200 {object} dto.BranchResponse "Branch details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch ID format"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{branchID} [get]
// @Security BearerAuth
func (h *BranchHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := getBranchIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get branch ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainBranch, err := h.service.GetBranch(r.Context(), branchID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, branch.ErrNotFound) && !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get branch", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewBranchResponse(domainBranch))
}

// ListBranches handles GET /branches
// @Summary List branches
// @Tags Branches
// @Produce json
// @Success 200 {array} dto.BranchResponse "List of branches"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches [get]
// @Security BearerAuth
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list branches", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.BranchResponse, len(branches))
	for i, b := range branches {
		resp[i] = dto.NewBranchResponse(b)
	}

	respondJSON(w, http.StatusOK, resp)
}

// DeleteBranch handles DELETE /branches/{branchID}
// @Summary Delete a branch
// @Description Removes a branch. Fails with 409 when loans still reference it.
// @Tags Branches
// @Produce json
// @Param branchID path int true "Branch ID" Minimum(1)
// @Success 204 "Branch successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch ID"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 409 {object} dto.ErrorResponse "Branch still referenced by loans"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{branchID} [delete]
// @Security BearerAuth
func (h *BranchHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := getBranchIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get branch ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	err = h.service.DeleteBranch(r.Context(), branchID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrReferential) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to delete branch", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Branch deleted successfully", slog.Int64("branchID", branchID))
	respondJSON(w, http.StatusNoContent, nil)
}
