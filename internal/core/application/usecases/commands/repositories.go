// Package commands holds the write side of foodtrack: cart edits, checkout, payment
// confirmation, order transitions, dispatch and the courier registry. Handlers that touch
// Postgres run inside a unit of work; cart handlers talk to the cart store directly.
package commands

import (
	"context"

	"foodtrack/internal/core/ports"
)

type (
	// TxManager brackets one database transaction. Handlers defer Rollback and ignore its
	// error, which is ErrInvalidTransaction once Commit has run.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// OrderUoW covers checkout, payment confirmation and the dispatch sweeps, which only
	// write orders. Events raised by the orders are published after Commit.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CourierUoW covers the courier registry: registration and availability.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// UoW spans both aggregates. Assigning a courier writes the order and marks the courier
	// busy; a delivery or cancellation writes the order and frees its courier. Both halves
	// commit together or not at all.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil {
	//       return err
	//   }
	//   defer uow.Rollback(ctx)
	//
	//   o, _ := uow.OrderRepository().Get(ctx, orderID)
	//   c, _ := uow.CourierRepository().Get(ctx, courierID)
	//   // o.AssignCourier(...); c.TakeOrder(...)
	//
	//   return uow.Commit(ctx)
	UoW interface {
		TxManager
		CourierRepoFactory
		OrderRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
