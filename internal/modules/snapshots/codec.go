package snapshots

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func encodePayload[I any, O any](p payload[I, O]) ([]byte, string, error) {
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode snapshot payload: %w", err)
	}
	return data, checksum(data), nil
}

func decodePayload[I any, O any](data []byte) (payload[I, O], error) {
	var p payload[I, O]
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	for i := range p.Payments {
		p.Payments[i].CreatedAt = p.Payments[i].CreatedAt.UTC()
	}
	return p, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// toSnapshot decodes a row into its typed form.
func toSnapshot[I any, O any](r record) (*Snapshot[I, O], error) {
	p, err := decodePayload[I, O](r.Payload)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", r.ID, err)
	}
	return &Snapshot[I, O]{
		ID:                      r.ID,
		PropertyID:              r.PropertyID,
		Kind:                    r.Kind,
		Inputs:                  p.Inputs,
		Outputs:                 p.Outputs,
		EffectiveRates:          p.EffectiveRates,
		Payments:                p.Payments,
		StatusPipelineAtCapture: r.StatusPipeline,
		Checksum:                r.Checksum,
		CreatedAt:               r.CreatedAt,
	}, nil
}
