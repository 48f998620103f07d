package calculos

import "time"

// Calculation is one saved grade simulation. Every score is in [0, 100].
type Calculation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;size:100;not null;index" json:"userId"`
	DP        float64   `gorm:"column:dp;not null" json:"dp"`
	CFSD      float64   `gorm:"column:cfsd;not null" json:"cfsd"`
	NEP       float64   `gorm:"column:nep;not null" json:"nep"`
	DEM       float64   `gorm:"column:dem;not null" json:"dem"`
	Resultado float64   `gorm:"column:resultado;not null" json:"resultado"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Calculation) TableName() string {
	return "calculos"
}
