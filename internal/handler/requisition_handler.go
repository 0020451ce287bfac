package handler

import (
	"net/http"

	"github.com/securenetizen/asset-management/internal/middleware"
	"github.com/securenetizen/asset-management/internal/service"
	"github.com/securenetizen/asset-management/pkg/pagination"
	"github.com/securenetizen/asset-management/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequisitionHandler struct {
	requisitionService service.RequisitionService
}

func NewRequisitionHandler(requisitionService service.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{requisitionService: requisitionService}
}

func (h *RequisitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	requisitions := router.Group("/api/requisitions")
	requisitions.Use(middleware.RequireAuth())
	{
		requisitions.POST("", h.CreateRequisition)
		requisitions.GET("", h.ListRequisitions)
		requisitions.GET("/:id", h.GetRequisition)
		requisitions.PUT("/:id", h.UpdateRequisition)
		requisitions.POST("/:id/transition", h.TransitionRequisition)
		requisitions.DELETE("/:id", h.DeleteRequisition)
	}
}

// CreateRequisition handles POST /api/requisitions
// @Summary      Create a requisition
// @Description  Creates a requisition owned by the authenticated user. The total cost is computed from the items; any caller-supplied total is ignored.
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequisitionRequest  true  "Requisition payload"
// @Success      201      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/requisitions [post]
func (h *RequisitionHandler) CreateRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid actor identity"))
		return
	}

	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requisitionService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequisitions handles GET /api/requisitions
// @Summary      List requisitions
// @Description  Lists requisitions, optionally filtered by creator and status
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        createdBy  query     string  false  "Filter by creator id"
// @Param        status     query     string  false  "Filter by status"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Paged}
// @Failure      400        {object}  response.Response
// @Router       /api/requisitions [get]
func (h *RequisitionHandler) ListRequisitions(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.RequisitionFilter{
		CreatedBy: c.Query("createdBy"),
		Status:    c.Query("status"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	requisitions, total, err := h.requisitionService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requisitions, total, params.Page, params.Limit))
}

// GetRequisition handles GET /api/requisitions/:id
// @Summary      Get a requisition
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) GetRequisition(c *gin.Context) {
	result, err := h.requisitionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateRequisition handles PUT /api/requisitions/:id
// @Summary      Edit a requisition
// @Description  Replaces title, description, and items. Only the owner may edit, and only while the requisition is draft or pending. Status and review fields are untouchable through this endpoint.
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Requisition ID"
// @Param        payload  body      service.UpdateRequisitionRequest  true  "Updated content"
// @Success      200      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requisitions/{id} [put]
func (h *RequisitionHandler) UpdateRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid actor identity"))
		return
	}

	var req service.UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requisitionService.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// TransitionRequisition handles POST /api/requisitions/:id/transition
// @Summary      Transition a requisition
// @Description  Applies one lifecycle action (submit, approve, reject, process, complete). The acting user comes from the access token; role and current-state legality are enforced before any write.
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Requisition ID"
// @Param        payload  body      service.TransitionRequest  true  "Transition request"
// @Success      200      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requisitions/{id}/transition [post]
func (h *RequisitionHandler) TransitionRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid actor identity"))
		return
	}

	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requisitionService.Transition(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteRequisition handles DELETE /api/requisitions/:id
// @Summary      Delete a requisition
// @Description  Removes a draft requisition. Records past draft are workflow history and cannot be deleted.
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requisitions/{id} [delete]
func (h *RequisitionHandler) DeleteRequisition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid actor identity"))
		return
	}

	if err := h.requisitionService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Requisition deleted"))
}
