package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TestPredictionID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestPredictionID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestSubscriberRef = "sub-0001"

	// FixedTime is a stable clock reading for time-sensitive assertions.
	FixedTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
)
