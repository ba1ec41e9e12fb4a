// Package metrics collects and exposes Prometheus metrics for reservation outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics port used by the reservation service.
type Recorder interface {
	RecordBooked()
	RecordSlotFull()
	RecordTableCollision()
	RecordCancelled(by string)
	RecordUpdated()
	RecordNotificationFailure(kind string)
}

// Collector records reservation metrics into a Prometheus registry.
type Collector struct {
	booked         prometheus.Counter
	slotFull       prometheus.Counter
	collisions     prometheus.Counter
	cancelled      *prometheus.CounterVec
	updated        prometheus.Counter
	notifyFailures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		booked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_booked_total",
			Help: "Reservations created by the allocator.",
		}),
		slotFull: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_slot_full_total",
			Help: "Booking attempts rejected because every table was taken.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_table_collisions_total",
			Help: "Inserts that lost a (time_slot, table_number) race and were retried.",
		}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_cancelled_total",
			Help: "Reservations removed, by initiator.",
		}, []string{"by"}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_updated_total",
			Help: "Reservations modified by admins.",
		}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_notifications_failed_total",
			Help: "Best-effort notifications that failed, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.booked,
		c.slotFull,
		c.collisions,
		c.cancelled,
		c.updated,
		c.notifyFailures,
	)
	return c
}

func (c *Collector) RecordBooked()         { c.booked.Inc() }
func (c *Collector) RecordSlotFull()       { c.slotFull.Inc() }
func (c *Collector) RecordTableCollision() { c.collisions.Inc() }
func (c *Collector) RecordUpdated()        { c.updated.Inc() }

func (c *Collector) RecordCancelled(by string) {
	c.cancelled.WithLabelValues(by).Inc()
}

func (c *Collector) RecordNotificationFailure(kind string) {
	c.notifyFailures.WithLabelValues(kind).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordBooked()                    {}
func (Nop) RecordSlotFull()                  {}
func (Nop) RecordTableCollision()            {}
func (Nop) RecordCancelled(string)           {}
func (Nop) RecordUpdated()                   {}
func (Nop) RecordNotificationFailure(string) {}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
