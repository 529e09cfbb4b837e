package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	User        *UserRepository
	Location    *LocationRepository
	Item        *ItemRepository
	Transaction *TransactionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Location:    NewLocationRepository(db),
		Item:        NewItemRepository(db),
		Transaction: NewTransactionRepository(db),
	}
}
