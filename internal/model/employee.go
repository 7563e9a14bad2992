package model

import "time"

// Group グループ（所属部署）— groups
type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	BaseModel

	// 関連
	Employees []Employee `gorm:"foreignKey:GroupID" json:"employees,omitempty"`
}

func (Group) TableName() string { return "groups" }

// Employee 従業員マスタ — employees
// name / name_kana は常に現行の氏名履歴レコードを反映する
type Employee struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"type:varchar(100);not null" json:"name"`
	NameKana        *string    `gorm:"type:varchar(100)" json:"name_kana,omitempty"`
	GroupID         uint       `gorm:"not null" json:"group_id"`
	AssignmentDate  *time.Time `gorm:"type:date" json:"assignment_date,omitempty"`
	TerminationDate *time.Time `gorm:"type:date" json:"termination_date,omitempty"`
	BaseModel

	// 関連
	Group         *Group                 `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	FunctionRoles []EmployeeFunctionRole `gorm:"foreignKey:EmployeeID" json:"function_roles,omitempty"`
	NameHistory   []EmployeeNameHistory  `gorm:"foreignKey:EmployeeID" json:"name_history,omitempty"`
}

func (Employee) TableName() string { return "employees" }

// IsActive 在籍中かどうか（退職日未設定 = 在籍）
func (e *Employee) IsActive() bool { return e.TerminationDate == nil }

// FunctionRole 役割マスタ — function_roles
type FunctionRole struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RoleCode string `gorm:"type:varchar(20);not null;uniqueIndex" json:"role_code"`
	RoleName string `gorm:"type:varchar(50);not null" json:"role_name"`
	RoleType string `gorm:"type:varchar(20);not null" json:"role_type"` // 役割カテゴリ
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

func (FunctionRole) TableName() string { return "function_roles" }

// EmployeeFunctionRole 従業員の役割割当 — employee_function_roles
// 同一 (employee_id, role_type) で end_date IS NULL の行は部分一意インデックスにより
// 高々1件（カテゴリごとの現行割当）
type EmployeeFunctionRole struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	EmployeeID     uint       `gorm:"not null;index" json:"employee_id"`
	FunctionRoleID uint       `gorm:"not null" json:"function_role_id"`
	RoleType       string     `gorm:"type:varchar(20);not null" json:"role_type"`
	IsPrimary      bool       `gorm:"not null;default:false" json:"is_primary"`
	StartDate      time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate        *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	BaseModel

	// 関連
	FunctionRole *FunctionRole `gorm:"foreignKey:FunctionRoleID" json:"function_role,omitempty"`
}

func (EmployeeFunctionRole) TableName() string { return "employee_function_roles" }

// EmployeeNameHistory 氏名履歴 — employee_name_histories
// 従業員ごとに valid_from で時間を分割し、隙間も重なりもなく、
// is_current (valid_to IS NULL) の行がちょうど1件存在する
type EmployeeNameHistory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID uint       `gorm:"not null;index" json:"employee_id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	NameKana   *string    `gorm:"type:varchar(100)" json:"name_kana,omitempty"`
	ValidFrom  time.Time  `gorm:"type:date;not null" json:"valid_from"`
	ValidTo    *time.Time `gorm:"type:date" json:"valid_to,omitempty"`
	IsCurrent  bool       `gorm:"not null;default:false" json:"is_current"`
	Note       *string    `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EmployeeNameHistory) TableName() string { return "employee_name_histories" }
