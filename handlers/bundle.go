package handlers

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	Requests      *ServiceRequestHandler
	Proposals     *ProposalHandler
	Bookings      *BookingHandler
	Freelancers   *FreelancerHandler
	Notifications *NotificationHandler
	Payments      *PaymentHandler
	Health        *HealthHandler
}
