package models

import "time"

// Customer is a billed client. Name is the natural key used for upserts and
// matches case-sensitively.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Address   string    `gorm:"type:text;not null" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

func CustomerFromMap(row map[string]interface{}) (*Customer, error) {
	r := rowReader{row: row, entity: "customer"}
	c := &Customer{
		ID:        r.uint("id"),
		Name:      r.string("name"),
		Address:   r.optionalString("address", ""),
		CreatedAt: r.optionalTime("created_at"),
		UpdatedAt: r.optionalTime("updated_at"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return c, nil
}

// CustomerFromProfile maps a client profile onto customer fields.
func CustomerFromProfile(p *ClientProfile) Customer {
	return Customer{Name: p.Client.Name, Address: p.Client.Address}
}
