package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

type AddressController struct {
	DB *gorm.DB
}

func NewAddressController(db *gorm.DB) *AddressController {
	return &AddressController{DB: db}
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetAddresses -> daftar alamat milik user yang login
func (ac *AddressController) GetAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	var addresses []models.Address
	if err := ac.DB.Where("user_id = ?", userID).Order("is_default DESC, id").Find(&addresses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of addresses", gin.H{
		"addresses": addresses,
	})
}

// CreateAddress menambahkan alamat baru; alamat pertama otomatis default
func (ac *AddressController) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	type request struct {
		RecipientName string   `json:"recipient_name" binding:"required"`
		PhoneNumber   string   `json:"phone_number" binding:"required"`
		AddressLine   string   `json:"address_line" binding:"required"`
		Detail        string   `json:"detail"`
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		IsDefault     bool     `json:"is_default"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	ac.DB.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count)

	address := models.Address{
		UserID:        userID,
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		AddressLine:   req.AddressLine,
		Detail:        req.Detail,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		IsDefault:     req.IsDefault || count == 0,
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Address created", address)
}

// DeleteAddress menghapus alamat milik user yang login
func (ac *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	id, _ := strconv.Atoi(c.Param("address_id"))

	result := ac.DB.Where("user_id = ?", userID).Delete(&models.Address{}, id)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("address not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Address deleted", gin.H{"address_id": id})
}
