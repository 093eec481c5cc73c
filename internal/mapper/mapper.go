package mapper

import (
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/quote"
)

// ToStatusHistoryDTO converts StatusHistory to StatusHistoryDTO
func ToStatusHistoryDTO(h *domain.StatusHistory) domain.StatusHistoryDTO {
	return domain.StatusHistoryDTO{
		ID:          h.ID,
		Status:      h.Status,
		StatusLabel: h.Status.Label(),
		Note:        h.Note,
		UpdatedAt:   h.UpdatedAt,
	}
}

// ToStatusHistoryDTOs keeps the stored order, newest first
func ToStatusHistoryDTOs(notes []domain.StatusHistory) []domain.StatusHistoryDTO {
	out := make([]domain.StatusHistoryDTO, len(notes))
	for i := range notes {
		out[i] = ToStatusHistoryDTO(&notes[i])
	}
	return out
}

// ToProposalDTO converts a proposal and derives its line and grand totals
func ToProposalDTO(customerID string, p *domain.TechnicalProposal) domain.ProposalDTO {
	items := make([]domain.ProposalItemDTO, len(p.Items))
	for i, item := range p.Items {
		items[i] = domain.ProposalItemDTO{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Price:       item.Price,
			LineTotal:   quote.LineTotal(item.Quantity, item.Price),
		}
	}

	total := quote.ProposalTotal(p.Items)
	return domain.ProposalDTO{
		ID:             p.ID,
		CustomerID:     customerID,
		Title:          p.Title,
		Items:          items,
		Total:          total,
		TotalFormatted: quote.Format(total),
		WireDiagramURL: p.WireDiagramURL,
		CreatedAt:      p.CreatedAt,
	}
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	proposals := make([]domain.ProposalDTO, len(c.Proposals))
	for i := range c.Proposals {
		proposals[i] = ToProposalDTO(c.ID, &c.Proposals[i])
	}

	return domain.CustomerDTO{
		ID:               c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		Address:          c.Address,
		Type:             c.Type,
		Source:           c.Source,
		ChargerType:      c.ChargerType,
		ChargerTypeLabel: c.ChargerType.Label(),
		Status:           c.Status,
		StatusLabel:      c.Status.Label(),
		Location:         c.Location,
		Notes:            ToStatusHistoryDTOs(c.Notes),
		Proposals:        proposals,
		CreatedAt:        c.CreatedAt,
		CreatedBy:        c.CreatedBy,
		AssignedTo:       c.AssignedTo,
	}
}

// ToCustomerDTOs converts a customer list
func ToCustomerDTOs(customers []domain.Customer) []domain.CustomerDTO {
	out := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		out[i] = ToCustomerDTO(&customers[i])
	}
	return out
}

// ToMapPinDTO projects a customer for map widgets
func ToMapPinDTO(c *domain.Customer) domain.MapPinDTO {
	return domain.MapPinDTO{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		Location:    c.Location,
		Status:      c.Status,
		ChargerType: c.ChargerType,
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(u *domain.User) domain.UserDTO {
	assigned := u.AssignedCustomers
	if assigned == nil {
		assigned = []string{}
	}
	return domain.UserDTO{
		ID:                u.ID,
		FullName:          u.FullName,
		Email:             u.Email,
		Role:              u.Role,
		RoleLabel:         u.Role.Label(),
		Status:            u.Status,
		AssignedCustomers: append([]string{}, assigned...),
		CreatedAt:         u.CreatedAt,
	}
}

// ToUserDTOs converts a user list
func ToUserDTOs(users []domain.User) []domain.UserDTO {
	out := make([]domain.UserDTO, len(users))
	for i := range users {
		out[i] = ToUserDTO(&users[i])
	}
	return out
}

// ToSessionUserDTO is the reduced user shown on the user picker
func ToSessionUserDTO(u *domain.User) domain.SessionUserDTO {
	return domain.SessionUserDTO{
		ID:       u.ID,
		FullName: u.FullName,
		Role:     u.Role,
		Status:   u.Status,
	}
}

// ToChargerDTO converts ChargerModel to ChargerDTO
func ToChargerDTO(m *domain.ChargerModel) domain.ChargerDTO {
	price := quote.CatalogPrice(m.Price)
	features := m.Features
	if features == nil {
		features = []string{}
	}
	return domain.ChargerDTO{
		ID:             m.ID,
		Name:           m.Name,
		Power:          m.Power,
		Type:           m.Type,
		Brand:          m.Brand,
		BrandLabel:     m.Brand.Label(),
		Price:          price,
		PriceFormatted: quote.Format(price),
		Features:       append([]string{}, features...),
		ImageURL:       m.ImageURL,
	}
}

// ToChargerDTOs converts a catalog list
func ToChargerDTOs(models []domain.ChargerModel) []domain.ChargerDTO {
	out := make([]domain.ChargerDTO, len(models))
	for i := range models {
		out[i] = ToChargerDTO(&models[i])
	}
	return out
}
