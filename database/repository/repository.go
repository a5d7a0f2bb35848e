package repository

import (
	"fmt"

	"marketplace/database"
	bookingRepo "marketplace/database/repository/booking"
	deviceRepo "marketplace/database/repository/device"
	freelancerRepo "marketplace/database/repository/freelancer"
	memoryRepo "marketplace/database/repository/memory"
	notificationRepo "marketplace/database/repository/notification"
	proposalRepo "marketplace/database/repository/proposal"
	requestRepo "marketplace/database/repository/request"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	ServiceRequestRepository = requestRepo.ServiceRequestRepository
	ProposalRepository       = proposalRepo.ProposalRepository
	RequestBookingRepository = bookingRepo.RequestBookingRepository
	FreelancerRepository     = freelancerRepo.FreelancerRepository
	NotificationRepository   = notificationRepo.NotificationRepository
	DeviceRepository         = deviceRepo.DeviceRepository
)

// Repositories bundles every store the services depend on.
type Repositories struct {
	Requests      ServiceRequestRepository
	Proposals     ProposalRepository
	Bookings      RequestBookingRepository
	Freelancers   FreelancerRepository
	Notifications NotificationRepository
	Devices       DeviceRepository
	Tx            database.Transactor
}

// NewMongoRepositories builds every repository over db and ensures indexes.
func NewMongoRepositories(client *mongo.Client, dbName string, transactions bool) (*Repositories, error) {
	db := client.Database(dbName)

	requests, err := requestRepo.NewMongoServiceRequestRepo(db)
	if err != nil {
		return nil, fmt.Errorf("service requests: %w", err)
	}
	proposals, err := proposalRepo.NewMongoProposalRepo(db)
	if err != nil {
		return nil, fmt.Errorf("proposals: %w", err)
	}
	bookings, err := bookingRepo.NewMongoRequestBookingRepo(db)
	if err != nil {
		return nil, fmt.Errorf("bookings: %w", err)
	}
	freelancers, err := freelancerRepo.NewMongoFreelancerRepo(db)
	if err != nil {
		return nil, fmt.Errorf("freelancers: %w", err)
	}
	notifications, err := notificationRepo.NewMongoNotificationRepo(db)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	devices, err := deviceRepo.NewMongoDeviceRepo(db)
	if err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}

	return &Repositories{
		Requests:      requests,
		Proposals:     proposals,
		Bookings:      bookings,
		Freelancers:   freelancers,
		Notifications: notifications,
		Devices:       devices,
		Tx:            database.NewMongoTransactor(client, transactions),
	}, nil
}

// NewMemoryRepositories builds in-process repositories for development and tests.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Requests:      memoryRepo.NewServiceRequestRepo(),
		Proposals:     memoryRepo.NewProposalRepo(),
		Bookings:      memoryRepo.NewRequestBookingRepo(),
		Freelancers:   memoryRepo.NewFreelancerRepo(),
		Notifications: memoryRepo.NewNotificationRepo(),
		Devices:       memoryRepo.NewDeviceRepo(),
		Tx:            database.NoopTransactor{},
	}
}
