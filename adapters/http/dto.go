package http

import (
	"time"

	userUC "github.com/khoahotran/user-management/internal/application/usecase/user"
	"github.com/khoahotran/user-management/internal/domain/user"
)

// User DTOs
type CreateUserRequest struct {
	SSN        string  `json:"ssn" binding:"required"`
	FirstName  string  `json:"first_name" binding:"required,min=3,max=100,alphaspace"`
	MiddleName *string `json:"middle_name" binding:"omitempty,min=3,max=100,alphaspace"`
	LastName   string  `json:"last_name" binding:"required,min=3,max=100,alphaspace"`
	BirthDate  string  `json:"birth_date" binding:"required,pastdate"`
}

type UpdateUserRequest struct {
	FirstName  string  `json:"first_name" binding:"required,min=3,max=100,alphaspace"`
	MiddleName *string `json:"middle_name" binding:"omitempty,min=3,max=100,alphaspace"`
	LastName   string  `json:"last_name" binding:"required,min=3,max=100,alphaspace"`
	BirthDate  string  `json:"birth_date" binding:"required,pastdate"`
}

type UpdateUserSettingsRequest struct {
	Settings []map[string]string `json:"settings" binding:"required,min=1,dive,len=1"`
}

// ListUsersQuery pages active users; offset is a zero-based page index.
type ListUsersQuery struct {
	MaxRecords *int `form:"max_records" binding:"omitempty,min=1"`
	Offset     int  `form:"offset" binding:"min=0"`
}

type UserDataDTO struct {
	ID          int64      `json:"id"`
	SSN         string     `json:"ssn"`
	FirstName   string     `json:"first_name"`
	MiddleName  *string    `json:"middle_name,omitempty"`
	LastName    string     `json:"last_name"`
	BirthDate   string     `json:"birth_date"`
	CreatedTime time.Time  `json:"created_time"`
	UpdatedTime time.Time  `json:"updated_time"`
	CreatedBy   string     `json:"created_by"`
	UpdatedBy   string     `json:"updated_by"`
	IsActive    bool       `json:"is_active"`
	DeletedTime *time.Time `json:"deleted_time,omitempty"`
}

type UserResponse struct {
	UserData     UserDataDTO         `json:"user_data"`
	UserSettings []map[string]string `json:"user_settings"`
}

type UserListResponse struct {
	UserData     []UserDataDTO `json:"user_data"`
	MaxRecords   int           `json:"max_records"`
	Offset       int           `json:"offset"`
	TotalRecords int64         `json:"total_records"`
}

func ToUserDataDTO(u *user.User) UserDataDTO {
	return UserDataDTO{
		ID:          u.ID,
		SSN:         u.SSN,
		FirstName:   u.FirstName,
		MiddleName:  u.MiddleName,
		LastName:    u.FamilyName,
		BirthDate:   u.BirthDate.Format(user.BirthDateLayout),
		CreatedTime: u.CreatedAt,
		UpdatedTime: u.UpdatedAt,
		CreatedBy:   u.CreatedBy,
		UpdatedBy:   u.UpdatedBy,
		IsActive:    u.IsActive,
		DeletedTime: u.DeletedAt,
	}
}

func ToUserResponse(u *user.User) UserResponse {
	settings := make([]map[string]string, 0, len(u.Settings))
	for _, s := range u.Settings {
		settings = append(settings, map[string]string{s.Key: s.Value})
	}
	return UserResponse{UserData: ToUserDataDTO(u), UserSettings: settings}
}

func ToUserListResponse(out *userUC.ListUsersOutput) UserListResponse {
	data := make([]UserDataDTO, 0, len(out.Users))
	for _, u := range out.Users {
		data = append(data, ToUserDataDTO(u))
	}
	return UserListResponse{
		UserData:     data,
		MaxRecords:   out.MaxRecords,
		Offset:       out.Offset,
		TotalRecords: out.Total,
	}
}
