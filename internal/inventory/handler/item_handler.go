package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
)

type ItemHandler struct {
	svc *service.ItemService
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

func (h *ItemHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.ItemListParams{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     page,
		Size:     size,
	}
	items, total, err := h.svc.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	okPage(c, items, total, page, size)
}

func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}

func (h *ItemHandler) Create(c *gin.Context) {
	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	item, err := h.svc.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": item})
}

func (h *ItemHandler) Update(c *gin.Context) {
	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	item, err := h.svc.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, nil)
}

type importRequest struct {
	Items []service.ItemInput `json:"items" binding:"required"`
}

// Import 批量导入，逐行独立判定
func (h *ItemHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	result, err := h.svc.Import(req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, result)
}

type defaultLocationRequest struct {
	LocationID *string `json:"location_id"`
}

// SetDefaultLocation 设置或清除物品的默认库位
func (h *ItemHandler) SetDefaultLocation(c *gin.Context) {
	var req defaultLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	item, err := h.svc.SetDefaultLocation(c.Param("id"), req.LocationID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, item)
}

func (h *ItemHandler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories()
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, categories)
}
