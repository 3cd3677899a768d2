// file: internals/features/registry/model/student_model.go
package model

import "time"

// Tables below live in the external student registry. Column names follow
// that schema; this service never writes to them.

type FacultyModel struct {
	ID   int64  `json:"id" gorm:"column:id;primaryKey"`
	Name string `json:"name" gorm:"column:name;type:varchar(255);not null;unique"`
}

func (FacultyModel) TableName() string { return "faculties" }

type GroupModel struct {
	ID        int64         `json:"id" gorm:"column:id;primaryKey"`
	Name      string        `json:"name" gorm:"column:name;type:varchar(50);not null"`
	FacultyID int64         `json:"faculty_id" gorm:"column:faculty_id;not null"`
	Faculty   *FacultyModel `json:"faculty,omitempty" gorm:"foreignKey:FacultyID;references:ID"`
}

func (GroupModel) TableName() string { return "groups" }

type StudentModel struct {
	ID                  int64       `json:"id" gorm:"column:id;primaryKey"`
	StudentTicketNumber string      `json:"student_ticket_number" gorm:"column:student_ticket_number;type:varchar(50);not null;uniqueIndex"`
	LastName            string      `json:"last_name" gorm:"column:last_name;type:varchar(100);not null"`
	FirstName           string      `json:"first_name" gorm:"column:first_name;type:varchar(100);not null"`
	MiddleName          *string     `json:"middle_name,omitempty" gorm:"column:middle_name;type:varchar(100)"`
	BirthDate           time.Time   `json:"birth_date" gorm:"column:birth_date;type:date;not null"`
	IsForeign           bool        `json:"is_foreign" gorm:"column:is_foreign;not null"`
	CityOfResidence     string      `json:"city_of_residence" gorm:"column:city_of_residence;type:varchar(100);not null"`
	GroupID             int64       `json:"group_id" gorm:"column:group_id;not null"`
	Group               *GroupModel `json:"group,omitempty" gorm:"foreignKey:GroupID;references:ID"`
}

func (StudentModel) TableName() string { return "students" }
