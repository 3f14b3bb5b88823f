package db

import (
	"errors"

	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"gorm.io/gorm"
)

func FindOrCreateAddressByAddress(db *gorm.DB, address string) (models.Address, error) {
	if address == "" {
		return models.Address{}, errors.New("address is required")
	}

	addr := models.Address{
		Address: address,
	}
	err := db.Where(&addr).FirstOrCreate(&addr).Error
	return addr, err
}
