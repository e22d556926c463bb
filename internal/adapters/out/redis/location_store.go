package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodtrack/internal/core/domain/model/kernel"

	goredis "github.com/redis/go-redis/v9"
)

// saveIfNewer writes the sample unless the stored one was captured later.
// KEYS[1] location key; ARGV: capturedAt (unix ms), lat, lng, ttl (ms).
var saveIfNewer = goredis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'ts')
if stored and tonumber(stored) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'ts', ARGV[1], 'lat', ARGV[2], 'lng', ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// LocationStore implements ports.CourierLocationStore as one hash per courier.
// The compare-and-set runs as a Lua script, so concurrent publishes cannot overwrite a newer
// sample with an older one.
type LocationStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewLocationStore(client goredis.UniversalClient, ttl time.Duration) *LocationStore {
	return &LocationStore{client: client, ttl: ttl}
}

func (s *LocationStore) Save(ctx context.Context, courierID kernel.UUID, sample kernel.LocationSample) (bool, error) {
	stored, err := saveIfNewer.Run(ctx, s.client,
		[]string{locationKey(courierID)},
		sample.CapturedAt.UnixMilli(),
		strconv.FormatFloat(sample.Point.Lat(), 'f', -1, 64),
		strconv.FormatFloat(sample.Point.Lng(), 'f', -1, 64),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis save location: %w", err)
	}
	return stored == 1, nil
}

func (s *LocationStore) Get(ctx context.Context, courierID kernel.UUID) (*kernel.LocationSample, error) {
	values, err := s.client.HMGet(ctx, locationKey(courierID), "ts", "lat", "lng").Result()
	if err != nil {
		return nil, fmt.Errorf("redis get location: %w", err)
	}
	return parseSample(values)
}

// GetMany reads all samples in one pipeline round trip. Couriers without a sample are absent
// from the result.
func (s *LocationStore) GetMany(
	ctx context.Context,
	courierIDs []kernel.UUID,
) (map[kernel.UUID]kernel.LocationSample, error) {
	samples := make(map[kernel.UUID]kernel.LocationSample, len(courierIDs))
	if len(courierIDs) == 0 {
		return samples, nil
	}

	cmds := make([]*goredis.SliceCmd, len(courierIDs))
	_, err := s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range courierIDs {
			cmds[i] = pipe.HMGet(ctx, locationKey(id), "ts", "lat", "lng")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis get locations: %w", err)
	}

	for i, cmd := range cmds {
		sample, parseErr := parseSample(cmd.Val())
		if parseErr != nil {
			return nil, parseErr
		}
		if sample != nil {
			samples[courierIDs[i]] = *sample
		}
	}
	return samples, nil
}

var errCorruptSample = errors.New("corrupt location sample")

// parseSample returns nil for a missing hash.
func parseSample(values []any) (*kernel.LocationSample, error) {
	if len(values) != 3 || values[0] == nil {
		return nil, nil
	}

	fields := make([]string, 3)
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, errCorruptSample
		}
		fields[i] = str
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptSample, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptSample, err)
	}
	lng, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptSample, err)
	}

	point, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return nil, err
	}
	return &kernel.LocationSample{Point: point, CapturedAt: time.UnixMilli(ts).UTC()}, nil
}

func locationKey(courierID kernel.UUID) string {
	return "courier:location:" + courierID.String()
}
