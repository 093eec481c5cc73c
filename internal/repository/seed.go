package repository

import (
	"time"

	"github.com/evcrm/charger-crm/internal/domain"
)

func seedDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DefaultUsers is the dataset a fresh installation starts with
func DefaultUsers() Users {
	return Users{
		{
			ID:                "u1",
			FullName:          "Admin Hệ Thống",
			Email:             "admin@vinfast.vn",
			Role:              domain.RoleAdmin,
			Status:            true,
			AssignedCustomers: []string{},
			CreatedAt:         seedDate(2023, time.January, 1),
		},
		{
			ID:                "u2",
			FullName:          "Nguyễn Kinh Doanh",
			Email:             "sales@vinfast.vn",
			Role:              domain.RoleSales,
			Status:            true,
			AssignedCustomers: []string{"1", "3"},
			CreatedAt:         seedDate(2023, time.May, 15),
		},
		{
			ID:                "u3",
			FullName:          "Trần Kỹ Thuật",
			Email:             "tech@vinfast.vn",
			Role:              domain.RoleTechnician,
			Status:            true,
			AssignedCustomers: []string{"1"},
			CreatedAt:         seedDate(2023, time.June, 20),
		},
	}
}

// DefaultCustomers is the dataset a fresh installation starts with
func DefaultCustomers() Customers {
	return Customers{
		{
			ID:          "1",
			Name:        "Nguyễn Văn A",
			Phone:       "0901234567",
			Address:     "Vinhomes Ocean Park, Gia Lâm, Hà Nội",
			Type:        domain.CustomerTypeIndividual,
			Source:      domain.SourceWebsite,
			ChargerType: domain.ChargerKW7,
			Status:      domain.StatusInstalling,
			Location:    domain.Location{Lat: 20.994, Lng: 105.945},
			Notes: []domain.StatusHistory{
				{
					ID:        "n1",
					Status:    domain.StatusNew,
					Note:      "Customer wants the charger in the shared apartment basement",
					UpdatedAt: seedDate(2023, time.October, 1),
				},
			},
			Proposals:  []domain.TechnicalProposal{},
			CreatedAt:  seedDate(2023, time.October, 1),
			AssignedTo: "u2",
		},
		{
			ID:          "2",
			Name:        "Công ty TNHH Vận tải X",
			Phone:       "0243888888",
			Address:     "KCN Bắc Thăng Long, Đông Anh, Hà Nội",
			Type:        domain.CustomerTypeBusiness,
			Source:      domain.SourceHotline,
			ChargerType: domain.ChargerKW30,
			Status:      domain.StatusContracted,
			Location:    domain.Location{Lat: 21.121, Lng: 105.783},
			Notes:       []domain.StatusHistory{},
			Proposals:   []domain.TechnicalProposal{},
			CreatedAt:   seedDate(2023, time.October, 5),
			AssignedTo:  "u1",
		},
		{
			ID:          "3",
			Name:        "Trần Thị B",
			Phone:       "0912345678",
			Address:     "Vinhomes Riverside, Long Biên, Hà Nội",
			Type:        domain.CustomerTypeIndividual,
			Source:      domain.SourceFacebook,
			ChargerType: domain.ChargerKW11,
			Status:      domain.StatusProposalSent,
			Location:    domain.Location{Lat: 21.045, Lng: 105.912},
			Notes:       []domain.StatusHistory{},
			Proposals:   []domain.TechnicalProposal{},
			CreatedAt:   seedDate(2023, time.October, 10),
			AssignedTo:  "u2",
		},
	}
}

// DefaultChargers is the catalog a fresh installation starts with
func DefaultChargers() Chargers {
	return Chargers{
		{
			ID: "c1", Name: "AC 11kW wallbox", Power: "11kW", Type: domain.CurrentAC, Brand: domain.BrandStarcharge,
			Price:    15500000,
			Features: []string{"AC slow charging", "Suited to homes", "Wall-mounted design"},
		},
		{
			ID: "c2", Name: "DC 20kW (Link)", Power: "20kW", Type: domain.CurrentDC, Brand: domain.BrandChargecore,
			Price:    115000000,
			Features: []string{"DC fast charging", "Networked (Link)", "Suited to car parks"},
		},
		{
			ID: "c3", Name: "DC 20kW (NoLink)", Power: "20kW", Type: domain.CurrentDC, Brand: domain.BrandChargecore,
			Price:    95000000,
			Features: []string{"DC fast charging", "Offline (NoLink)", "Economy"},
		},
		{
			ID: "c4", Name: "DC 22kW", Power: "22kW", Type: domain.CurrentDC, Brand: domain.BrandStarcharge,
			Price:    135000000,
			Features: []string{"DC fast charging", "Starcharge standard", "High efficiency"},
		},
		{
			ID: "c5", Name: "DC 30kW", Power: "30kW", Type: domain.CurrentDC, Brand: domain.BrandChargecore,
			Price:    185000000,
			Features: []string{"30kW DC fast charging", "High durability", "Compatible with every VinFast model"},
		},
		{
			ID: "c6", Name: "DC 60kW", Power: "60kW", Type: domain.CurrentDC, Brand: domain.BrandStarcharge,
			Price:    320000000,
			Features: []string{"Ultra-fast charging", "Two connectors", "Smart management"},
		},
		{
			ID: "c7", Name: "DC 120kW", Power: "120kW", Type: domain.CurrentDC, Brand: domain.BrandChargecore,
			Price:    580000000,
			Features: []string{"120kW hub charger", "Smart load balancing", "Public station solution"},
		},
	}
}
