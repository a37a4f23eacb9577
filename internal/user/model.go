package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a clinical role within the organization.
type Role string

const (
	RoleDoctor      Role = "doctor"
	RoleNurse       Role = "nurse"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// User represents a clinician or coordinator using the system.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
	FirstName string    `gorm:"type:varchar(100);column:first_name;not null" json:"firstName"`
	LastName  string    `gorm:"type:varchar(100);column:last_name;not null" json:"lastName"`
	Email     string    `gorm:"type:varchar(255);column:email;not null;uniqueIndex" json:"email"`
	Role      Role      `gorm:"type:varchar(30);column:role;not null" json:"role"`
}

func (u *User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	return
}

// CreateUserDTO is the data transfer object for registering a user.
type CreateUserDTO struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Role      Role   `json:"role" binding:"required"`
}
