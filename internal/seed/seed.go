package seed

import (
	"context"
	"errors"
	"time"

	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureDemoCustomers loads a small demo book when the database is empty.
// Rows go through the registry so each customer gets its payment method,
// opening obligation and due notification like a real registration.
func EnsureDemoCustomers(db *gorm.DB, registry customerdomain.Registry, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if registry == nil {
		return errors.New("seed registry is required")
	}

	ctx := context.Background()

	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM customers`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rows := demoCustomers()
	for _, req := range rows {
		if _, err := registry.Register(ctx, req); err != nil {
			return err
		}
	}
	log.Info("seeded demo customers", zap.Int("count", len(rows)))
	return nil
}

func demoCustomers() []customerdomain.RegisterRequest {
	contract := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return []customerdomain.RegisterRequest{
		{
			Name:         "Amadeu Jose",
			Address:      "Rua Amilcar Cabral 12, Luanda",
			Phone:        "923000001",
			Mbps:         100,
			ContractDate: contract,
			PaymentDay:   20,
			PaymentType:  "transfer",
			Bank:         "BAI",
			IBAN:         "AO06000600000100037131174",
			MonthlyValue: 25000,
		},
		{
			Name:         "Beatriz Neto",
			Address:      "Avenida 4 de Fevereiro 80, Luanda",
			Phone:        "923000002",
			Mbps:         200,
			ContractDate: contract.AddDate(0, 0, 10),
			PaymentDay:   5,
			PaymentType:  "card",
			Bank:         "BFA",
			IBAN:         "AO06000600000100037131175",
			MonthlyValue: 42000,
		},
		{
			Name:         "Carlos Silva",
			Address:      "Rua da Missao 3, Benguela",
			Phone:        "923000003",
			Mbps:         50,
			ContractDate: contract.AddDate(0, 1, 0),
			PaymentDay:   28,
			PaymentType:  "cash",
			MonthlyValue: 15000,
		},
	}
}
