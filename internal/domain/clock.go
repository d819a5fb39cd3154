package domain

import "time"

// RealClock implements Clock using time.Now, normalized to UTC. Grounded on
// the teacher's cmd/gone/main.go realClock type.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
