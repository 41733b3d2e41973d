// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	"time"

	"github.com/taibuivan/bookstore/internal/backend"
)

// Steps are the delivery milestones shown to the customer, in order.
var Steps = []string{"Order Placed", "Processing", "Shipped", "Out for Delivery", "Delivered"}

// DeliveryWindow is the promised time between ordering and delivery.
const DeliveryWindow = 5 * 24 * time.Hour

// Step is one milestone of the timeline.
type Step struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// Tracking is an order with its timeline.
type Tracking struct {
	Order            backend.Order `json:"order"`
	Step             int           `json:"step"`
	Timeline         []Step        `json:"timeline"`
	ExpectedDelivery time.Time     `json:"expectedDelivery"`
}

// TrackingStep maps a status to the 1-based milestone reached.
//
// PROCESSING is 2, SHIPPED 3 and DELIVERED 4. Every other status, including
// unknown ones, is 1. "Out for Delivery" is never current and "Delivered" is
// never completed.
func TrackingStep(status backend.OrderStatus) int {
	switch status {
	case backend.OrderProcessing:
		return 2
	case backend.OrderShipped:
		return 3
	case backend.OrderDelivered:
		return 4
	default:
		return 1
	}
}

// Timeline marks each of [Steps] against status.
func Timeline(status backend.OrderStatus) []Step {
	current := TrackingStep(status)
	timeline := make([]Step, len(Steps))
	for index, name := range Steps {
		timeline[index] = Step{
			Name:      name,
			Completed: index < current,
			Current:   index == current-1,
		}
	}
	return timeline
}

// TrackingFor builds the tracking view of order placed at placed. A zero
// placed time counts from now.
func TrackingFor(order backend.Order, placed time.Time) Tracking {
	if placed.IsZero() {
		placed = time.Now()
	}
	return Tracking{
		Order:            order,
		Step:             TrackingStep(order.Status),
		Timeline:         Timeline(order.Status),
		ExpectedDelivery: placed.Add(DeliveryWindow),
	}
}
