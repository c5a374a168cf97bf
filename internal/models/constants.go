package models

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// KnownStatuses lists every status an admin may set. There is no enforced
// transition graph: any known status can replace any other.
var KnownStatuses = []string{
	StatusNew,
	StatusContacted,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

func IsKnownStatus(status string) bool {
	for _, s := range KnownStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const (
	// DefaultProgressTTL время жизни черновика заявки в Redis
	DefaultProgressTTL = 24 * 60 * 60 // 24 часа в секундах

	// MaxPreferredDateDays насколько далеко вперед можно выбрать дату визита
	MaxPreferredDateDays = 180

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// RateLimitRPS лимит запросов с одного адреса на публичные эндпоинты
	RateLimitRPS   = 5
	RateLimitBurst = 10
)

const (
	// Intake form steps, in order.
	StepContact = "contact"
	StepService = "service"
	StepOptions = "options"
	StepConfirm = "confirm"
)

var StepSequence = []string{StepContact, StepService, StepOptions, StepConfirm}
