package model

// ClassEnrollment 学生与班级的关联记录，(class_id, student_id) 唯一
type ClassEnrollment struct {
	BaseModel
	ClassID   uint `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_class_student,priority:1" json:"classId"`
	StudentID uint `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_class_student,priority:2" json:"studentId"`
}

func (ClassEnrollment) TableName() string {
	return "class_enrollments"
}
