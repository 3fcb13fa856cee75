package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Seed inserts a small demo ledger: one client with money, one
// contractor, two contracts and three unpaid jobs. It only runs
// against an empty profiles table so restarts stay harmless.
func Seed(db *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM profiles`).Scan(&count).Error; err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed skipped, ledger is not empty")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var clientID, contractorID int64
		if err := tx.Raw(`
			INSERT INTO profiles (name, role, balance, created_at)
			VALUES ('John', 'client', 1000, CURRENT_TIMESTAMP)
			RETURNING id
		`).Scan(&clientID).Error; err != nil {
			return err
		}
		if err := tx.Raw(`
			INSERT INTO profiles (name, role, balance, created_at)
			VALUES ('Joe', 'contractor', 500, CURRENT_TIMESTAMP)
			RETURNING id
		`).Scan(&contractorID).Error; err != nil {
			return err
		}

		var contract1, contract2 int64
		if err := tx.Raw(`
			INSERT INTO contracts (owner_profile_id, status, created_at)
			VALUES (?, 'in_progress', CURRENT_TIMESTAMP)
			RETURNING id
		`, clientID).Scan(&contract1).Error; err != nil {
			return err
		}
		if err := tx.Raw(`
			INSERT INTO contracts (owner_profile_id, status, created_at)
			VALUES (?, 'new', CURRENT_TIMESTAMP)
			RETURNING id
		`, clientID).Scan(&contract2).Error; err != nil {
			return err
		}

		jobs := []struct {
			contractID  int64
			description string
			price       float64
		}{
			{contract1, "Design logo", 200},
			{contract1, "Develop website", 500},
			{contract2, "Write blog post", 100},
		}
		for _, job := range jobs {
			if err := tx.Exec(`
				INSERT INTO jobs (contract_id, description, price, paid_amount, created_at)
				VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
			`, job.contractID, job.description, job.price).Error; err != nil {
				return err
			}
		}

		log.Info().Int64("client_id", clientID).Int64("contractor_id", contractorID).Msg("demo ledger seeded")
		return nil
	})
}
