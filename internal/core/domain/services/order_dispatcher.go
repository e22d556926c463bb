package services

import (
	"bytes"
	"sort"
	"time"

	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
)

// Candidate is a courier offered to the dispatcher together with its last known location.
// Location is nil when the courier never reported one or the sample expired.
type Candidate struct {
	Courier  *courier.Courier
	Location *kernel.LocationSample
}

// OrderDispatcher is a domain service responsible for finding and assigning the nearest
// available courier for an order awaiting dispatch.
//
// Business rules:
//   - Only online couriers without an active order are considered
//   - Couriers with a fresh location are ranked by distance to the restaurant
//   - Couriers without a fresh location are deprioritized, not excluded
//   - Assignment updates order and courier together; the caller persists both atomically
//
// Example usage:
//
//	dispatcher := NewOrderDispatcher(30 * time.Second)
//	assigned, err := dispatcher.Dispatch(o, candidates, time.Now())
//	if errors.Is(err, errs.ErrNoCourierAvailable) {
//	    // try again on the next tick
//	}
type OrderDispatcher struct {
	freshness time.Duration
}

// NewOrderDispatcher creates a new OrderDispatcher instance.
//
// Parameters:
//   - freshness: how old a location sample may be and still count as recent
func NewOrderDispatcher(freshness time.Duration) OrderDispatcher {
	return OrderDispatcher{freshness: freshness}
}

// Dispatch selects the best candidate and assigns it to order.
//
// Returns:
//   - *courier.Courier: The courier assigned to the order
//   - error: ErrNoCourierAvailable if no candidate is eligible, or validation/assignment errors
func (d OrderDispatcher) Dispatch(o *order.Order, candidates []Candidate, now time.Time) (*courier.Courier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !o.IsAwaitingDispatch() {
		return nil, order.ErrOrderNotDispatchable
	}

	ranked, err := d.Rank(o.Pickup(), candidates, now)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, errs.ErrNoCourierAvailable
	}

	best := ranked[0]
	if err = best.TakeOrder(o.ID()); err != nil {
		return nil, err
	}
	if err = o.AssignCourier(best.ID(), now); err != nil {
		return nil, err
	}

	return best, nil
}

// Rank orders the available candidates: fresh samples by ascending distance to pickup,
// then the rest by courier ID so the choice is deterministic.
func (d OrderDispatcher) Rank(pickup kernel.GeoPoint, candidates []Candidate, now time.Time) ([]*courier.Courier, error) {
	type scored struct {
		courier  *courier.Courier
		fresh    bool
		distance float64
	}

	eligible := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Courier.Validate(); err != nil {
			return nil, err
		}
		if !c.Courier.IsAvailable() {
			continue
		}

		s := scored{courier: c.Courier}
		if c.Location != nil && c.Location.IsFresh(now, d.freshness) {
			distance, err := c.Location.Point.DistanceKm(pickup)
			if err != nil {
				return nil, err
			}
			s.fresh = true
			s.distance = distance
		}
		eligible = append(eligible, s)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.fresh != b.fresh {
			return a.fresh
		}
		if a.fresh && a.distance != b.distance {
			return a.distance < b.distance
		}
		ai, bi := a.courier.ID().Bytes(), b.courier.ID().Bytes()
		return bytes.Compare(ai[:], bi[:]) < 0
	})

	result := make([]*courier.Courier, len(eligible))
	for i, s := range eligible {
		result[i] = s.courier
	}
	return result, nil
}
