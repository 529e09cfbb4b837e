package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
)

type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

func (h *LocationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.LocationListParams{
		Keyword:  c.Query("keyword"),
		ParentID: c.Query("parent_id"),
		Page:     page,
		Size:     size,
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		params.IsActive = &active
	}
	locs, total, err := h.svc.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	okPage(c, locs, total, page, size)
}

// Tree 完整层级树
func (h *LocationHandler) Tree(c *gin.Context) {
	tree, err := h.svc.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, tree)
}

func (h *LocationHandler) Get(c *gin.Context) {
	loc, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, loc)
}

func (h *LocationHandler) Descendants(c *gin.Context) {
	ids, err := h.svc.Descendants(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, ids)
}

func (h *LocationHandler) Create(c *gin.Context) {
	var input service.CreateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	loc, err := h.svc.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": loc})
}

func (h *LocationHandler) Update(c *gin.Context) {
	var input service.UpdateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	loc, err := h.svc.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, loc)
}

type reparentRequest struct {
	ParentID *string `json:"parent_id"`
}

// Reparent 移动库位到新的父节点，parent_id 为空表示提升为根
func (h *LocationHandler) Reparent(c *gin.Context) {
	var req reparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	loc, err := h.svc.Reparent(c.Param("id"), req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, loc)
}

func (h *LocationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}

type batchStatusRequest struct {
	IDs      []string `json:"ids" binding:"required"`
	IsActive bool     `json:"is_active"`
}

// BatchStatus 批量启用/停用
func (h *LocationHandler) BatchStatus(c *gin.Context) {
	var req batchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	if err := h.svc.BatchSetStatus(req.IDs, req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}
