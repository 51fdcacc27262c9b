package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus -> daftar menu beserta kategorinya
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var menus []models.Menu
	if err := mc.DB.Preload("Category").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetMenuByCategory -> filter menu per kategori (?category_id=)
func (mc *MenuController) GetMenuByCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menus []models.Menu
	if err := mc.DB.Preload("Category").Where("category_id = ?", categoryID).Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetMenuByID -> detail 1 menu
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	var menu models.Menu
	if err := mc.DB.Preload("Category").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// CreateMenu (admin)
func (mc *MenuController) CreateMenu(c *gin.Context) {
	type request struct {
		CategoryID  uint   `json:"category_id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Price       int64  `json:"price" binding:"required,min=0"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// UpdateMenu (admin)
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type request struct {
		CategoryID  *uint   `json:"category_id"`
		Name        *string `json:"name"`
		Price       *int64  `json:"price"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		IsAvailable *bool   `json:"is_available"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID != nil {
		menu.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Price != nil {
		menu.Price = *req.Price
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.ImageURL != nil {
		menu.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu (admin)
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	if err := mc.DB.Delete(&models.Menu{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": id})
}
