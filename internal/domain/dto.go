package domain

import (
	"time"

	"github.com/evcrm/charger-crm/internal/quote"
)

// DTOs for API responses

type StatusHistoryDTO struct {
	ID          string        `json:"id"`
	Status      ProjectStatus `json:"status"`
	StatusLabel string        `json:"statusLabel"`
	Note        string        `json:"note"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type ProposalItemDTO struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"`
	LineTotal   int64  `json:"lineTotal"`
}

type ProposalDTO struct {
	ID             string            `json:"id"`
	CustomerID     string            `json:"customerId"`
	Title          string            `json:"title"`
	Items          []ProposalItemDTO `json:"items"`
	Total          int64             `json:"total"`
	TotalFormatted string            `json:"totalFormatted"`
	WireDiagramURL string            `json:"wireDiagramUrl,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type CustomerDTO struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Phone            string             `json:"phone"`
	Address          string             `json:"address"`
	Type             CustomerType       `json:"type"`
	Source           string             `json:"source"`
	ChargerType      ChargerType        `json:"chargerType"`
	ChargerTypeLabel string             `json:"chargerTypeLabel"`
	Status           ProjectStatus      `json:"status"`
	StatusLabel      string             `json:"statusLabel"`
	Location         Location           `json:"location"`
	Notes            []StatusHistoryDTO `json:"notes"`
	Proposals        []ProposalDTO      `json:"proposals"`
	CreatedAt        time.Time          `json:"createdAt"`
	CreatedBy        string             `json:"createdBy,omitempty"`
	AssignedTo       string             `json:"assignedTo,omitempty"`
}

type UserDTO struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	RoleLabel         string    `json:"roleLabel"`
	Status            bool      `json:"status"`
	AssignedCustomers []string  `json:"assignedCustomers"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ChargerDTO struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Power          string       `json:"power"`
	Type           CurrentType  `json:"type"`
	Brand          ChargerBrand `json:"brand"`
	BrandLabel     string       `json:"brandLabel"`
	Price          int64        `json:"price"`
	PriceFormatted string       `json:"priceFormatted"`
	Features       []string     `json:"features"`
	ImageURL       string       `json:"imageUrl,omitempty"`
}

// ProgressColumnDTO is one status column of the progress board
type ProgressColumnDTO struct {
	Status    ProjectStatus `json:"status"`
	Label     string        `json:"label"`
	Customers []CustomerDTO `json:"customers"`
}

type StatusCountDTO struct {
	Status ProjectStatus `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

type ChargerTypeCountDTO struct {
	ChargerType ChargerType `json:"chargerType"`
	Label       string      `json:"label"`
	Count       int         `json:"count"`
}

type DashboardMetricsDTO struct {
	TotalCustomers     int                   `json:"totalCustomers"`
	Installing         int                   `json:"installing"`
	Completed          int                   `json:"completed"`
	SevenKWDemand      int                   `json:"sevenKwDemand"`
	StatusCounts       []StatusCountDTO      `json:"statusCounts"`
	ChargerTypeCounts  []ChargerTypeCountDTO `json:"chargerTypeCounts"`
	RecentCustomers    []CustomerDTO         `json:"recentCustomers"`
	CatalogModelsCount int                   `json:"catalogModelsCount"`
}

// MapPinDTO is the read-only customer projection consumed by map widgets
type MapPinDTO struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Address     string        `json:"address"`
	Location    Location      `json:"location"`
	Status      ProjectStatus `json:"status"`
	ChargerType ChargerType   `json:"chargerType"`
}

// AdviceDTO carries advisory output; Available is false when the advisor failed
type AdviceDTO struct {
	CustomerID string           `json:"customerId"`
	Available  bool             `json:"available"`
	Advice     *TechnicalAdvice `json:"advice,omitempty"`
}

// SessionUserDTO is a selectable acting user
type SessionUserDTO struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
	Status   bool   `json:"status"`
}

// MeDTO describes the acting user and the views they can open
type MeDTO struct {
	User  UserDTO  `json:"user"`
	Views []string `json:"views"`
}

// Request DTOs

type CreateCustomerRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Phone       string       `json:"phone" validate:"required,max=30"`
	Address     string       `json:"address" validate:"required,max=500"`
	Type        CustomerType `json:"type" validate:"required,oneof=INDIVIDUAL BUSINESS"`
	Source      string       `json:"source,omitempty" validate:"max=100"`
	ChargerType ChargerType  `json:"chargerType,omitempty" validate:"omitempty,oneof=KW7 KW11 KW22 KW30 KW60 KW120 KW150"`
	AssignedTo  string       `json:"assignedTo,omitempty" validate:"max=50"`
	Note        string       `json:"note,omitempty" validate:"max=2000"`
}

// UpdateCustomerRequest is a patch: nil fields are left unchanged.
// Status is not patchable here; it moves through the lifecycle endpoints.
type UpdateCustomerRequest struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone       *string       `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string       `json:"address,omitempty" validate:"omitempty,max=500"`
	Type        *CustomerType `json:"type,omitempty" validate:"omitempty,oneof=INDIVIDUAL BUSINESS"`
	Source      *string       `json:"source,omitempty" validate:"omitempty,max=100"`
	ChargerType *ChargerType  `json:"chargerType,omitempty" validate:"omitempty,oneof=KW7 KW11 KW22 KW30 KW60 KW120 KW150"`
	AssignedTo  *string       `json:"assignedTo,omitempty" validate:"omitempty,max=50"`
	Note        *string       `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type SetStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required,oneof=NEW SURVEYED PROPOSAL_SENT CONTRACTED INSTALLING COMPLETED"`
}

type AddNoteRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

type CreateUserRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Role     Role   `json:"role" validate:"required,oneof=ADMIN SALES TECHNICIAN"`
}

// ChargerRequest creates or replaces a catalog model. Price must be a number.
type ChargerRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Power    string       `json:"power" validate:"required,max=50"`
	Type     CurrentType  `json:"type" validate:"required,oneof=AC DC"`
	Brand    ChargerBrand `json:"brand" validate:"required"`
	Price    *int64       `json:"price" validate:"required,gte=0"`
	Features []string     `json:"features"`
	ImageURL string       `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type ProposalItemRequest struct {
	Description string       `json:"description" validate:"max=500"`
	Quantity    quote.Amount `json:"quantity"`
	Unit        string       `json:"unit" validate:"max=50"`
	Price       quote.Amount `json:"price"`
}

type ProposalRequest struct {
	Title          string                `json:"title" validate:"max=200"`
	Items          []ProposalItemRequest `json:"items" validate:"dive"`
	WireDiagramURL string                `json:"wireDiagramUrl,omitempty" validate:"omitempty,url"`
}
