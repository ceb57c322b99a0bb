package models

import "time"

// DefaultVendorID is the single pre-seeded vendor every invoice is issued by.
const DefaultVendorID uint = 1

type Vendor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"type:text;not null" json:"address"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:50;not null" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (Vendor) TableName() string {
	return "vendors"
}

func VendorFromMap(row map[string]interface{}) (*Vendor, error) {
	r := rowReader{row: row, entity: "vendor"}
	v := &Vendor{
		ID:        r.uint("id"),
		Name:      r.string("name"),
		Address:   r.optionalString("address", ""),
		Email:     r.optionalString("email", ""),
		Phone:     r.optionalString("phone", ""),
		CreatedAt: r.optionalTime("created_at"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return v, nil
}
