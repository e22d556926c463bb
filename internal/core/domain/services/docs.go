// Package services provides domain services that work across aggregates:
//   - PricingEngine: computes a fare breakdown from cart lines, fees and coupons
//   - OrderDispatcher: picks the nearest available courier for an order
package services
