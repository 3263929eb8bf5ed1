package domain

// Customer is read by the invoice form and the summary cards.
type Customer struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"not null" json:"email"`
	ImageURL string `gorm:"column:image_url" json:"image_url"`
}

func (Customer) TableName() string { return "customers" }
