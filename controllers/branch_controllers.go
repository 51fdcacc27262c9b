package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

type BranchController struct {
	DB *gorm.DB
}

func NewBranchController(db *gorm.DB) *BranchController {
	return &BranchController{DB: db}
}

// defaultBranches dipakai saat data cabang tidak tersedia, dengan flag
// fallback supaya storefront tahu datanya degraded
var defaultBranches = []models.Branch{
	{
		ID:             1,
		Name:           "TakumaEat Central",
		Address:        "Jl. Sudirman No. 1, Jakarta",
		OperationHours: "10:00 - 22:00",
		IsActive:       true,
	},
}

// GetAllBranches -> daftar cabang aktif untuk takeaway; jika kosong atau
// query gagal, kembalikan daftar default dengan fallback=true
func (bc *BranchController) GetAllBranches(c *gin.Context) {
	var branches []models.Branch
	err := bc.DB.Where("is_active = ?", true).Find(&branches).Error
	if err != nil || len(branches) == 0 {
		if err != nil {
			utils.ErrorLogger.Printf("Failed to load branches, serving fallback: %v", err)
		}
		utils.RespondJSON(c, http.StatusOK, "List of branches", gin.H{
			"branches": defaultBranches,
			"fallback": true,
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of branches", gin.H{
		"branches": branches,
	})
}

// CreateBranch (admin)
func (bc *BranchController) CreateBranch(c *gin.Context) {
	type request struct {
		Name           string `json:"name" binding:"required"`
		Address        string `json:"address" binding:"required"`
		OperationHours string `json:"operation_hours"`
		MapURL         string `json:"map_url"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	branch := models.Branch{
		Name:           req.Name,
		Address:        req.Address,
		OperationHours: req.OperationHours,
		MapURL:         req.MapURL,
		IsActive:       true,
	}
	if err := bc.DB.Create(&branch).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Branch created", branch)
}

// UpdateBranch (admin)
func (bc *BranchController) UpdateBranch(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("branch_id"))

	var branch models.Branch
	if err := bc.DB.First(&branch, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type request struct {
		Name           *string `json:"name"`
		Address        *string `json:"address"`
		OperationHours *string `json:"operation_hours"`
		MapURL         *string `json:"map_url"`
		IsActive       *bool   `json:"is_active"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		branch.Name = *req.Name
	}
	if req.Address != nil {
		branch.Address = *req.Address
	}
	if req.OperationHours != nil {
		branch.OperationHours = *req.OperationHours
	}
	if req.MapURL != nil {
		branch.MapURL = *req.MapURL
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := bc.DB.Save(&branch).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch updated", branch)
}

// DeleteBranch (admin)
func (bc *BranchController) DeleteBranch(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("branch_id"))

	if err := bc.DB.Delete(&models.Branch{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch deleted", gin.H{"branch_id": id})
}
