package models

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Operator - сотрудник, который получает уведомления о готовых бюллетенях
type Operator struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'client'" json:"role"`
}

// IsAdmin проверяет, является ли оператор администратором
func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// SetRole устанавливает роль
func (o *Operator) SetRole(role Role) {
	o.Role = role
}

func (Operator) TableName() string {
	return "operators"
}
