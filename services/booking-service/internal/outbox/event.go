package outbox

// Topic names double as event types; each event type gets its own topic.
const (
	EventAppointmentBooked    = "booking.appointment.booked.v1"
	EventAppointmentCancelled = "booking.appointment.cancelled.v1"
	EventReminderRequested    = "booking.reminder.requested.v1"
)

// Event is the domain event envelope staged in the outbox table within the
// same transaction as the state change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
