package domain

import "fmt"

type Status uint8

const (
	STATUS_PENDING_PAYMENT Status = iota
	STATUS_PAYMENT_DETECTED
	STATUS_PAYMENT_CONFIRMED
	STATUS_DISPATCH_ENQUEUED
	STATUS_DISPATCH_SENT
	STATUS_FULFILLED
	STATUS_FULFILL_FAILED_MANUAL
	STATUS_EXPIRED
	STATUS_EXTRA_PAYMENT
)

var Statuses = [...]string{
	"PENDING_PAYMENT",
	"PAYMENT_DETECTED",
	"PAYMENT_CONFIRMED",
	"DISPATCH_ENQUEUED",
	"DISPATCH_SENT",
	"FULFILLED",
	"FULFILL_FAILED_MANUAL",
	"EXPIRED",
	"EXTRA_PAYMENT",
}

// transition table. the only back edges are into EXTRA_PAYMENT and the
// admin recovery paths out of FULFILL_FAILED_MANUAL
var transitions = map[Status][]Status{
	STATUS_PENDING_PAYMENT:       {STATUS_PAYMENT_DETECTED, STATUS_EXPIRED},
	STATUS_PAYMENT_DETECTED:      {STATUS_PAYMENT_CONFIRMED, STATUS_EXPIRED, STATUS_EXTRA_PAYMENT},
	STATUS_PAYMENT_CONFIRMED:     {STATUS_DISPATCH_ENQUEUED, STATUS_EXTRA_PAYMENT},
	STATUS_DISPATCH_ENQUEUED:     {STATUS_DISPATCH_SENT, STATUS_FULFILL_FAILED_MANUAL},
	STATUS_DISPATCH_SENT:         {STATUS_FULFILLED, STATUS_FULFILL_FAILED_MANUAL},
	STATUS_FULFILLED:             {},
	STATUS_FULFILL_FAILED_MANUAL: {STATUS_FULFILLED, STATUS_DISPATCH_ENQUEUED},
	STATUS_EXPIRED:               {STATUS_EXTRA_PAYMENT},
	STATUS_EXTRA_PAYMENT:         {},
}

// AssertTransition is the single source of truth for order status changes.
// Every component must call it before writing Order.Status.
func AssertTransition(current, next Status) error {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.ToString(), next.ToString())
}

// statuses the watchers keep scanning for (late/extra payments included)
var WatchedStatuses = []Status{
	STATUS_PENDING_PAYMENT,
	STATUS_PAYMENT_DETECTED,
	STATUS_PAYMENT_CONFIRMED,
	STATUS_EXPIRED,
	STATUS_EXTRA_PAYMENT,
}

// statuses the extra-payment branch of the payment transition may leave
var extraPaymentFrom = [...]Status{
	STATUS_PENDING_PAYMENT,
	STATUS_PAYMENT_DETECTED,
	STATUS_PAYMENT_CONFIRMED,
	STATUS_EXPIRED,
}

var DispatchableStatuses = []Status{STATUS_PAYMENT_CONFIRMED, STATUS_DISPATCH_ENQUEUED}

// methods

func (s Status) ToString() string {
	return Statuses[s]
}

func StrToStatus(str string) (Status, bool) {
	for i, statusName := range Statuses {
		if str == statusName {
			return Status(i), true
		}
	}
	return STATUS_PENDING_PAYMENT, false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) IsWatched() bool {
	for _, w := range WatchedStatuses {
		if s == w {
			return true
		}
	}
	return false
}

func (s Status) IsDispatchable() bool {
	return s == STATUS_PAYMENT_CONFIRMED || s == STATUS_DISPATCH_ENQUEUED
}

func (s Status) CanBecomeExtraPayment() bool {
	for _, f := range extraPaymentFrom {
		if s == f {
			return true
		}
	}
	return false
}
