package queries

import (
	"context"

	"foodtrack/internal/core/ports"
	"foodtrack/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetCourierLocationQueryHandler struct {
	db        *gorm.DB
	locations ports.CourierLocationStore
}

func NewGetCourierLocationQueryHandler(db *gorm.DB, locations ports.CourierLocationStore) (*GetCourierLocationQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	if locations == nil {
		return nil, errs.NewValueIsRequiredError("locations")
	}

	return &GetCourierLocationQueryHandler{db: db, locations: locations}, nil
}

func (h *GetCourierLocationQueryHandler) Handle(
	ctx context.Context,
	query GetCourierLocationQuery,
) (GetCourierLocationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCourierLocationQueryResponse{}, err
	}

	parties, err := authorizeOrderRead(ctx, h.db, query.Actor(), query.OrderID())
	if err != nil {
		return GetCourierLocationQueryResponse{}, err
	}

	resp := GetCourierLocationQueryResponse{OrderID: query.OrderID(), CourierID: parties.courierID}
	if parties.courierID == nil {
		return resp, nil
	}

	resp.Sample, err = h.locations.Get(ctx, *parties.courierID)
	if err != nil {
		return GetCourierLocationQueryResponse{}, err
	}
	return resp, nil
}
