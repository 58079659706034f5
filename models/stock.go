package models

import (
	"time"

	"gorm.io/gorm"
)

// Stock represents one entry of the searchable symbol directory
type Stock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"uniqueIndex;not null" json:"symbol"`
	Name      string    `gorm:"not null" json:"name"`
	Exchange  string    `json:"exchange"` // NSE, BSE
	Sector    string    `json:"sector"`
	Status    string    `gorm:"default:'active'" json:"status"` // active, delisted, suspended
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockPrice caches one fetched daily bar so the trainer and repeated
// analyses do not always round-trip to the market-data provider
type StockPrice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StockID   uint      `gorm:"index:idx_stock_date" json:"stock_id"`
	Stock     Stock     `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	Date      time.Time `gorm:"index:idx_stock_date" json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
}

// MigrateStockModels runs database migrations for stock-related models
func MigrateStockModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Stock{},
		&StockPrice{},
	)
}

// SeedDefaultStocks populates the symbol directory with the NSE symbols
// the dashboard ships with. Existing rows are left untouched.
func SeedDefaultStocks(db *gorm.DB) error {
	stocks := []Stock{
		{Symbol: "RELIANCE.NS", Name: "Reliance Industries Ltd.", Exchange: "NSE", Sector: "Energy"},
		{Symbol: "TCS.NS", Name: "Tata Consultancy Services Ltd.", Exchange: "NSE", Sector: "Technology"},
		{Symbol: "HDFCBANK.NS", Name: "HDFC Bank Ltd.", Exchange: "NSE", Sector: "Banking"},
		{Symbol: "INFY.NS", Name: "Infosys Ltd.", Exchange: "NSE", Sector: "Technology"},
		{Symbol: "ICICIBANK.NS", Name: "ICICI Bank Ltd.", Exchange: "NSE", Sector: "Banking"},
		{Symbol: "HINDUNILVR.NS", Name: "Hindustan Unilever Ltd.", Exchange: "NSE", Sector: "Consumer Goods"},
		{Symbol: "SBIN.NS", Name: "State Bank of India", Exchange: "NSE", Sector: "Banking"},
		{Symbol: "BHARTIARTL.NS", Name: "Bharti Airtel Ltd.", Exchange: "NSE", Sector: "Telecom"},
		{Symbol: "ITC.NS", Name: "ITC Ltd.", Exchange: "NSE", Sector: "Consumer Goods"},
		{Symbol: "LTIM.NS", Name: "LTIMindtree Ltd.", Exchange: "NSE", Sector: "Technology"},
	}

	for _, stock := range stocks {
		stock.Status = "active"
		var existing Stock
		if err := db.Where("symbol = ?", stock.Symbol).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&stock).Error; err != nil {
					return err
				}
				continue
			}
			return err
		}
	}

	return nil
}
