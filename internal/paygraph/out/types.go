package out

import (
	"github.com/goccy/go-json"
)

const TypeMedian = "median"

type Envelope struct {
	Type  string          `json:"type"`   // e.g. "median"
	TS    int64           `json:"ts"`     // unix milli
	RunID string          `json:"run_id"` // one per process
	Data  json.RawMessage `json:"data"`
}

// MedianRecord is emitted once per parsed payment.
type MedianRecord struct {
	Stream     string `json:"stream"`
	Seq        uint64 `json:"seq"`
	EventTs    int64  `json:"event_ts"`
	Transition string `json:"transition"`
	Median     string `json:"median"` // truncated, two decimals
}
