package dtos

type UpdateUserRequest struct {
	Forename string `json:"forename" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type UpdateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
