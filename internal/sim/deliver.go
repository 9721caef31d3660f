package sim

import (
	"context"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
)

// StoreDeliverer writes samples straight into the location table. It is
// the last link in the fallback chain, used when neither the realtime
// channel nor the HTTP API is reachable.
type StoreDeliverer struct {
	locations repository.LocationRepository
}

func NewStoreDeliverer(locations repository.LocationRepository) *StoreDeliverer {
	return &StoreDeliverer{locations: locations}
}

func (d *StoreDeliverer) Name() string { return "store" }

func (d *StoreDeliverer) Deliver(ctx context.Context, sample *domain.LocationSample) error {
	return d.locations.Create(ctx, sample)
}
