package model

const (
	ClassTypePublic  = "public"
	ClassTypePrivate = "private"
)

// swagger:model Class
type Class struct {
	BaseModel

	TeacherID   uint   `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"type:enum('public','private');default:'private'" json:"type"`
	JoinCode    string `gorm:"size:16;uniqueIndex" json:"joinCode"`
}

func (Class) TableName() string {
	return "classes"
}
