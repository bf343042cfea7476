package postgres

import (
	"database/sql"

	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.PaymentRepository
	repository.PropertyRepository
	repository.UserRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		PropertyRepository:     NewPropertyRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
