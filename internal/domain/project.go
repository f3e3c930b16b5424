package domain

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectName string    `json:"projectName" gorm:"not null"`
	ClientName  string    `json:"clientName" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	ManagerID   uuid.UUID `json:"manager" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Manager *User  `json:"-" gorm:"foreignKey:ManagerID"`
	Team    []User `json:"team,omitempty" gorm:"many2many:project_members;constraint:OnDelete:CASCADE"`
	Tasks   []Task `json:"tasks,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// IsManager reports whether userID owns the project.
func (p *Project) IsManager(userID uuid.UUID) bool {
	return p.ManagerID == userID
}

// HasMember reports whether userID is on the project team. The manager is
// not a team member.
func (p *Project) HasMember(userID uuid.UUID) bool {
	for _, u := range p.Team {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// ProjectMember is the join row between projects and their team.
type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (ProjectMember) TableName() string {
	return "project_members"
}
