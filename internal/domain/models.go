package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the fixed role tag a user acts under
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSales      Role = "SALES"
	RoleTechnician Role = "TECHNICIAN"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleTechnician:
		return true
	}
	return false
}

// Label returns the display name of the role
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleSales:
		return "Sales"
	case RoleTechnician:
		return "Technician"
	}
	return string(r)
}

// ProjectStatus is the lifecycle stage of a customer opportunity.
// Declaration order is the canonical display order.
type ProjectStatus string

const (
	StatusNew          ProjectStatus = "NEW"
	StatusSurveyed     ProjectStatus = "SURVEYED"
	StatusProposalSent ProjectStatus = "PROPOSAL_SENT"
	StatusContracted   ProjectStatus = "CONTRACTED"
	StatusInstalling   ProjectStatus = "INSTALLING"
	StatusCompleted    ProjectStatus = "COMPLETED"
)

var projectStatuses = []ProjectStatus{
	StatusNew,
	StatusSurveyed,
	StatusProposalSent,
	StatusContracted,
	StatusInstalling,
	StatusCompleted,
}

var projectStatusLabels = map[ProjectStatus]string{
	StatusNew:          "New contact",
	StatusSurveyed:     "Surveyed",
	StatusProposalSent: "Proposal sent",
	StatusContracted:   "Contracted",
	StatusInstalling:   "Installing",
	StatusCompleted:    "Completed / maintenance",
}

// AllProjectStatuses returns every status in canonical order
func AllProjectStatuses() []ProjectStatus {
	out := make([]ProjectStatus, len(projectStatuses))
	copy(out, projectStatuses)
	return out
}

// IsValid reports whether s is a known lifecycle stage
func (s ProjectStatus) IsValid() bool {
	_, ok := projectStatusLabels[s]
	return ok
}

// Label returns the human-readable stage name
func (s ProjectStatus) Label() string {
	if l, ok := projectStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Ordinal returns the position of s in the canonical order, or -1
func (s ProjectStatus) Ordinal() int {
	for i, st := range projectStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// CustomerType distinguishes private and business customers
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "INDIVIDUAL"
	CustomerTypeBusiness   CustomerType = "BUSINESS"
)

// IsValid reports whether t is a known customer type
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeIndividual || t == CustomerTypeBusiness
}

// Label returns the display name of the customer type
func (t CustomerType) Label() string {
	switch t {
	case CustomerTypeIndividual:
		return "Individual"
	case CustomerTypeBusiness:
		return "Business"
	}
	return string(t)
}

// Standard lead sources. Customer.Source may also hold free text.
const (
	SourceWebsite  = "Website"
	SourceHotline  = "Hotline"
	SourceFacebook = "Facebook"
	SourceGoogle   = "Google Search"
	SourceReferral = "Referral"
)

// StandardSources lists the predefined lead sources
func StandardSources() []string {
	return []string{SourceWebsite, SourceHotline, SourceFacebook, SourceGoogle, SourceReferral}
}

// IsStandardSource reports whether source is one of the predefined values
func IsStandardSource(source string) bool {
	for _, s := range StandardSources() {
		if s == source {
			return true
		}
	}
	return false
}

// ChargerType is the power tier a customer is interested in
type ChargerType string

const (
	ChargerKW7   ChargerType = "KW7"
	ChargerKW11  ChargerType = "KW11"
	ChargerKW22  ChargerType = "KW22"
	ChargerKW30  ChargerType = "KW30"
	ChargerKW60  ChargerType = "KW60"
	ChargerKW120 ChargerType = "KW120"
	ChargerKW150 ChargerType = "KW150"
)

var chargerTypes = []ChargerType{ChargerKW7, ChargerKW11, ChargerKW22, ChargerKW30, ChargerKW60, ChargerKW120, ChargerKW150}

var chargerTypeLabels = map[ChargerType]string{
	ChargerKW7:   "7kW (AC)",
	ChargerKW11:  "11kW (AC)",
	ChargerKW22:  "22kW (AC)",
	ChargerKW30:  "30kW (DC)",
	ChargerKW60:  "60kW (DC)",
	ChargerKW120: "120kW (DC)",
	ChargerKW150: "150kW (DC Super)",
}

// AllChargerTypes returns every power tier from lowest to highest
func AllChargerTypes() []ChargerType {
	out := make([]ChargerType, len(chargerTypes))
	copy(out, chargerTypes)
	return out
}

// IsValid reports whether t is a known power tier
func (t ChargerType) IsValid() bool {
	_, ok := chargerTypeLabels[t]
	return ok
}

// Label returns the display name of the power tier
func (t ChargerType) Label() string {
	if l, ok := chargerTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// CurrentType is the charging current of a catalog model
type CurrentType string

const (
	CurrentAC CurrentType = "AC"
	CurrentDC CurrentType = "DC"
)

// IsValid reports whether c is AC or DC
func (c CurrentType) IsValid() bool {
	return c == CurrentAC || c == CurrentDC
}

// ChargerBrand identifies a catalog manufacturer
type ChargerBrand string

const (
	BrandChargecore ChargerBrand = "CHARGECORE"
	BrandStarcharge ChargerBrand = "STARCHARGE"
)

var brandLabels = map[ChargerBrand]string{
	BrandChargecore: "Chargecore",
	BrandStarcharge: "Starcharge",
}

// IsValid reports whether b is a registered brand
func (b ChargerBrand) IsValid() bool {
	_, ok := brandLabels[b]
	return ok
}

// Label returns the display name of the brand
func (b ChargerBrand) Label() string {
	if l, ok := brandLabels[b]; ok {
		return l
	}
	return string(b)
}

// User is a CRM operator. Status false means the account is locked.
type User struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	Status            bool      `json:"status"`
	AssignedCustomers []string  `json:"assignedCustomers"`
	CreatedAt         time.Time `json:"createdAt"`
}

// IsActive reports whether the user account is unlocked
func (u *User) IsActive() bool {
	return u.Status
}

// ChargerModel is a product in the charger catalog
type ChargerModel struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Power    string       `json:"power"`
	Type     CurrentType  `json:"type"`
	Brand    ChargerBrand `json:"brand"`
	Price    int64        `json:"price"`
	Features []string     `json:"features"`
	ImageURL string       `json:"imageUrl,omitempty"`
}

// Location is a WGS84 coordinate
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StatusHistory is one immutable entry of a customer's audit trail
type StatusHistory struct {
	ID        string        `json:"id"`
	Status    ProjectStatus `json:"status"`
	Note      string        `json:"note"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ProposalItem is a single priced line of a technical proposal
type ProposalItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"`
}

// Qty returns the line quantity
func (i ProposalItem) Qty() int64 { return i.Quantity }

// UnitPrice returns the price per unit
func (i ProposalItem) UnitPrice() int64 { return i.Price }

// TechnicalProposal is a quote attached to a customer. Its total is always derived.
type TechnicalProposal struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Items          []ProposalItem `json:"items"`
	WireDiagramURL string         `json:"wireDiagramUrl,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Customer is a sales opportunity tracked through installation
type Customer struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Phone       string              `json:"phone"`
	Address     string              `json:"address"`
	Type        CustomerType        `json:"type"`
	Source      string              `json:"source"`
	ChargerType ChargerType         `json:"chargerType"`
	Status      ProjectStatus       `json:"status"`
	Location    Location            `json:"location"`
	Notes       []StatusHistory     `json:"notes"`
	Proposals   []TechnicalProposal `json:"proposals"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy,omitempty"`
	AssignedTo  string              `json:"assignedTo,omitempty"`
}

// LatestNote returns the most recent history entry, if any
func (c *Customer) LatestNote() (StatusHistory, bool) {
	if len(c.Notes) == 0 {
		return StatusHistory{}, false
	}
	return c.Notes[0], true
}

// Clone returns a deep copy of the customer
func (c Customer) Clone() Customer {
	out := c
	if c.Notes != nil {
		out.Notes = make([]StatusHistory, len(c.Notes))
		copy(out.Notes, c.Notes)
	}
	if c.Proposals != nil {
		out.Proposals = make([]TechnicalProposal, len(c.Proposals))
		for i, p := range c.Proposals {
			out.Proposals[i] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the proposal
func (p TechnicalProposal) Clone() TechnicalProposal {
	out := p
	if p.Items != nil {
		out.Items = make([]ProposalItem, len(p.Items))
		copy(out.Items, p.Items)
	}
	return out
}

// Clone returns a deep copy of the user
func (u User) Clone() User {
	out := u
	if u.AssignedCustomers != nil {
		out.AssignedCustomers = make([]string, len(u.AssignedCustomers))
		copy(out.AssignedCustomers, u.AssignedCustomers)
	}
	return out
}

// Clone returns a deep copy of the charger model
func (m ChargerModel) Clone() ChargerModel {
	out := m
	if m.Features != nil {
		out.Features = make([]string, len(m.Features))
		copy(out.Features, m.Features)
	}
	return out
}

// TechnicalAdvice is the advisory payload produced for a customer site
type TechnicalAdvice struct {
	InstallationSpot       string `json:"installationSpot"`
	ElectricalRequirements string `json:"electricalRequirements"`
	EstimatedTime          string `json:"estimatedTime"`
	SafetyNotes            string `json:"safetyNotes"`
	EstimatedCostRange     string `json:"estimatedCostRange,omitempty"`
}

// Snapshot stores the serialized form of one collection
type Snapshot struct {
	Slot      string         `gorm:"type:varchar(50);primaryKey"`
	Payload   datatypes.JSON `gorm:"not null"`
	Version   int64          `gorm:"not null;default:0"`
	UpdatedAt time.Time      `gorm:"not null;column:updated_at"`
}

// TableName overrides the default table name to match the migration
func (Snapshot) TableName() string {
	return "snapshots"
}
