package database

import (
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

// Seed mengisi data awal: admin, cabang, kategori, menu, dan promo contoh.
// Seluruh seed bersifat idempotent, hanya berjalan jika tabel masih kosong.
func Seed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedBranches(db); err != nil {
		return err
	}
	if err := seedMenus(db); err != nil {
		return err
	}
	return seedPromos(db)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@takumaeat.com",
		Password: string(hashed),
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Info("Seeded default admin account")
	return nil
}

func seedBranches(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Branch{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	branches := []models.Branch{
		{
			Name:           "TakumaEat Sudirman",
			Address:        "Jl. Jend. Sudirman No. 10, Jakarta Pusat",
			OperationHours: "10:00 - 22:00",
			IsActive:       true,
		},
		{
			Name:           "TakumaEat Kemang",
			Address:        "Jl. Kemang Raya No. 88, Jakarta Selatan",
			OperationHours: "10:00 - 22:00",
			IsActive:       true,
		},
	}
	return db.Create(&branches).Error
}

func seedMenus(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MenuCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.MenuCategory{
		{Name: "Ramen"},
		{Name: "Rice Bowl"},
		{Name: "Drinks"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	menus := []models.Menu{
		{Name: "Shoyu Ramen", Price: 45000, CategoryID: categories[0].ID, Description: "Kuah shoyu dengan chashu", IsAvailable: true},
		{Name: "Spicy Miso Ramen", Price: 48000, CategoryID: categories[0].ID, Description: "Kuah miso pedas", IsAvailable: true},
		{Name: "Chicken Teriyaki Bowl", Price: 35000, CategoryID: categories[1].ID, Description: "Nasi dengan ayam teriyaki", IsAvailable: true},
		{Name: "Beef Yakiniku Bowl", Price: 42000, CategoryID: categories[1].ID, Description: "Nasi dengan daging yakiniku", IsAvailable: true},
		{Name: "Ocha", Price: 10000, CategoryID: categories[2].ID, Description: "Teh hijau dingin", IsAvailable: true},
	}
	return db.Create(&menus).Error
}

func seedPromos(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Promo{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	threeMonths := now.AddDate(0, 3, 0)
	oneMonth := now.AddDate(0, 1, 0)
	promos := []models.Promo{
		{
			Code:          "WELCOME10",
			Description:   "Diskon 10% untuk pesanan pertama",
			DiscountType:  models.PromoTypePercent,
			DiscountValue: 10,
			MaxDiscount:   20000,
			MinPurchase:   50000,
			UsageLimit:    1000,
			StartsAt:      &now,
			EndsAt:        &threeMonths,
			IsActive:      true,
		},
		{
			Code:          "ONGKIR15",
			Description:   "Potongan tetap Rp 15.000",
			DiscountType:  models.PromoTypeFixed,
			DiscountValue: 15000,
			MinPurchase:   75000,
			UsageLimit:    500,
			StartsAt:      &now,
			EndsAt:        &oneMonth,
			IsActive:      true,
		},
	}
	return db.Create(&promos).Error
}
