package dto

import (
	"time"

	"retailpos/internal/core/types"
	"retailpos/internal/domain/settings"
)

// UpdateSettingsRequest replaces the shop settings.
type UpdateSettingsRequest struct {
	ShopName          string        `json:"shopName" binding:"required,max=120"`
	TaxRatePercent    types.Percent `json:"taxRatePercent"`
	BillPrefix        string        `json:"billPrefix" binding:"required,max=16"`
	LowStockThreshold int64         `json:"lowStockThreshold"`
}

// ToSettings converts the request to domain settings.
func (r *UpdateSettingsRequest) ToSettings() *settings.Settings {
	return &settings.Settings{
		ShopName:          r.ShopName,
		TaxRatePercent:    r.TaxRatePercent,
		BillPrefix:        r.BillPrefix,
		LowStockThreshold: r.LowStockThreshold,
	}
}

// SettingsResponse is the current shop configuration.
type SettingsResponse struct {
	ShopName          string    `json:"shopName"`
	TaxRatePercent    string    `json:"taxRatePercent"`
	BillPrefix        string    `json:"billPrefix"`
	LowStockThreshold int64     `json:"lowStockThreshold"`
	UpdatedAt         time.Time `json:"updatedAt"`
	UpdatedBy         string    `json:"updatedBy,omitempty"`
}

// FromSettings maps settings.
func FromSettings(s *settings.Settings) SettingsResponse {
	return SettingsResponse{
		ShopName:          s.ShopName,
		TaxRatePercent:    s.TaxRatePercent.String(),
		BillPrefix:        s.BillPrefix,
		LowStockThreshold: s.LowStockThreshold,
		UpdatedAt:         s.UpdatedAt,
		UpdatedBy:         s.UpdatedBy,
	}
}
