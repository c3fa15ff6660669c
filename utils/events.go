package utils

import (
	"log"
	"time"
)

// Domain events published after a successful entitlement mutation. The
// dispatcher delivers the matching email with bounded retries; a delivery
// failure is logged and swallowed, never unwound into the committed change.

type EventType string

const (
	EventVerificationRequested EventType = "auth.verification_requested"
	EventEnrollmentGranted     EventType = "enrollment.granted"
	EventCourseCompleted       EventType = "course.completed"
	EventTeamActivated         EventType = "team.activated"
	EventMemberAccessGranted   EventType = "team.member_access_granted"
	EventMemberInvited         EventType = "team.member_invited"
	EventPaymentFailed         EventType = "payment.failed"
)

// Event carries the context an email template needs. Unused fields stay empty.
type Event struct {
	Type        EventType
	Email       string
	Name        string
	CourseTitle string
	TeamName    string
	PlanName    string
	Link        string
	Reason      string
}

const (
	maxDeliveryAttempts = 3
	retryDelay          = 5 * time.Second
)

var eventQueue chan Event

// StartEventDispatcher starts the background consumer. Call once from main
// before any Publish.
func StartEventDispatcher() {
	eventQueue = make(chan Event, 256)
	go func() {
		for event := range eventQueue {
			deliverWithRetry(event)
		}
	}()
	log.Println("[EVENTS] Event dispatcher started")
}

// Publish enqueues an event without blocking the request that produced it.
// When the queue is full the event is dropped with a log line; delivery is
// best effort.
func Publish(event Event) {
	if eventQueue == nil {
		log.Printf("[EVENTS] Dispatcher not running, dropping %s for %s", event.Type, event.Email)
		return
	}
	select {
	case eventQueue <- event:
	default:
		log.Printf("[EVENTS] Queue full, dropping %s for %s", event.Type, event.Email)
	}
}

func deliverWithRetry(event Event) {
	var err error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		if err = deliver(event); err == nil {
			return
		}
		log.Printf("[EVENTS] Delivery attempt %d/%d for %s to %s failed: %v",
			attempt, maxDeliveryAttempts, event.Type, event.Email, err)
		if attempt < maxDeliveryAttempts {
			time.Sleep(retryDelay)
		}
	}
	log.Printf("[EVENTS] Giving up on %s for %s", event.Type, event.Email)
}

func deliver(event Event) error {
	var subject, body string

	switch event.Type {
	case EventVerificationRequested:
		subject, body = VerificationEmail(event.Name, event.Link)
	case EventEnrollmentGranted:
		subject, body = EnrollmentEmail(event.Name, event.CourseTitle)
	case EventCourseCompleted:
		subject, body = CourseCompletedEmail(event.Name, event.CourseTitle)
	case EventTeamActivated:
		subject, body = TeamActivatedEmail(event.Name, event.PlanName)
	case EventMemberAccessGranted:
		subject, body = MemberAccessEmail(event.Name, event.PlanName)
	case EventMemberInvited:
		subject, body = InviteEmail(event.TeamName, event.Link)
	case EventPaymentFailed:
		subject, body = PaymentFailedEmail(event.Name, event.Reason)
	default:
		log.Printf("[EVENTS] Unknown event type %q, skipping", event.Type)
		return nil
	}

	return SendEmail([]string{event.Email}, subject, body)
}
