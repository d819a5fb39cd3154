package netfilter

import (
	"context"
	"time"

	"github.com/stefal/pyruse-go/internal/pipeline"
)

// Metrics reports a named counter increment (SPEC_FULL.md §4.9, component
// C14: ban installs/cancels). Declared locally so this package depends only
// on *pipeline.Metrics's shape, not the concrete type.
type Metrics interface {
	Inc(name string)
}

// Service ties a Backend and Storage together per the ban action's
// algorithm (SPEC_FULL.md §4.4):
//  1. choose ipv4/ipv6 set by IsIPv6(ip) -- left to the caller, which knows
//     the two configured set names;
//  2. store_and_remove_obsoletes;
//  3. if it reported an existing ban, cancel it first (swallowing failure);
//  4. set_ban, propagating any failure.
type Service struct {
	Backend Backend
	Storage Storage
	Metrics Metrics // optional; nil disables reporting
}

func (s *Service) inc(name string) {
	if s.Metrics != nil {
		s.Metrics.Inc(name)
	}
}

// Ban installs or refreshes a ban for ip in set, expiring at banUntil (nil
// meaning unbounded).
func (s *Service) Ban(ctx context.Context, set, ip string, banUntil *time.Time) error {
	existed, err := s.Storage.StoreAndRemoveObsoletes(set, ip, banUntil)
	if err != nil {
		return err
	}
	if existed {
		_ = s.Backend.CancelBan(ctx, set, ip) // kernel entry may already be gone/expired
		s.inc(pipeline.MetricBanCancels)
	}
	if err := s.Backend.SetBan(ctx, set, ip, banUntil); err != nil {
		return err
	}
	s.inc(pipeline.MetricBanInstalls)
	return nil
}
