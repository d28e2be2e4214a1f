package model

import (
	"time"
)

// Contract represents a service-provider agreement
type Contract struct {
	ID             string    `json:"id"`
	ContractNumber string    `json:"contract_number"`
	Supplier       string    `json:"supplier"`
	Description    string    `json:"description"`
	CategoryID     int64     `json:"category_id"`
	Category       *Category `json:"category,omitempty"`
	Responsible    string    `json:"responsible"`
	Status         string    `json:"status"` // draft, active, suspended, terminated, expired
	Value          float64   `json:"value"`
	StartDate      Date      `json:"start_date"`
	EndDate        Date      `json:"end_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContractStatus constants
const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusSuspended  = "suspended"
	StatusTerminated = "terminated"
	StatusExpired    = "expired"
)

// ValidStatus reports whether s is a known contract status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusActive, StatusSuspended, StatusTerminated, StatusExpired:
		return true
	}
	return false
}

// Category is read-only reference data attached to contracts
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContractCreate is the payload for creating a contract
type ContractCreate struct {
	ContractNumber string  `json:"contract_number" binding:"required"`
	Supplier       string  `json:"supplier" binding:"required"`
	Description    string  `json:"description"`
	CategoryID     int64   `json:"category_id" binding:"required"`
	Responsible    string  `json:"responsible" binding:"required"`
	Status         string  `json:"status"`
	Value          float64 `json:"value"`
	StartDate      Date    `json:"start_date" binding:"required"`
	EndDate        Date    `json:"end_date" binding:"required"`
}

// ContractUpdate is a sparse update payload; nil fields are left untouched
type ContractUpdate struct {
	ContractNumber *string  `json:"contract_number,omitempty"`
	Supplier       *string  `json:"supplier,omitempty"`
	Description    *string  `json:"description,omitempty"`
	CategoryID     *int64   `json:"category_id,omitempty"`
	Responsible    *string  `json:"responsible,omitempty"`
	Status         *string  `json:"status,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	StartDate      *Date    `json:"start_date,omitempty"`
	EndDate        *Date    `json:"end_date,omitempty"`
}

// ContractPage is one page of a filtered contract listing
type ContractPage struct {
	Items    []Contract `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Pages    int        `json:"pages"`
}

// FieldChange records one field's old and new value in a history entry
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeHistory records who changed which contract fields and when
type ChangeHistory struct {
	ID         int64                  `json:"id"`
	ContractID string                 `json:"contract_id"`
	ChangedBy  string                 `json:"changed_by"`
	Changes    map[string]FieldChange `json:"changes"`
	ChangedAt  time.Time              `json:"changed_at"`
}

// DashboardStats summarizes the contract portfolio
type DashboardStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	ExpiringSoon int     `json:"expiring_soon"`
	TotalValue   float64 `json:"total_value"`
}
