package integrations

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ProviderResult is the outcome of one provider call within a fan-out.
type ProviderResult struct {
	Provider   string
	ExternalID string
	Err        error
}

// CalendarSet fans calendar operations out to every configured provider
// concurrently. One provider failing never affects another.
type CalendarSet struct {
	adapters []CalendarAdapter
}

// NewCalendarSet ignores nil adapters, so disabled providers can be passed as-is.
func NewCalendarSet(adapters ...CalendarAdapter) *CalendarSet {
	set := &CalendarSet{}
	for _, a := range adapters {
		if a != nil {
			set.adapters = append(set.adapters, a)
		}
	}
	return set
}

func (s *CalendarSet) Empty() bool {
	return s == nil || len(s.adapters) == 0
}

func (s *CalendarSet) Providers() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.adapters))
	for i, a := range s.adapters {
		names[i] = a.Provider()
	}
	return names
}

// CreateEvents creates event in every provider and returns one result per provider.
func (s *CalendarSet) CreateEvents(ctx context.Context, event CalendarEvent) []ProviderResult {
	if s.Empty() {
		return nil
	}
	return s.fanOut(s.adapters, func(a CalendarAdapter) (string, error) {
		return a.CreateEvent(ctx, event)
	})
}

// UpdateEvents patches the events listed in ids, keyed by provider name.
func (s *CalendarSet) UpdateEvents(ctx context.Context, ids map[string]string, update CalendarEventUpdate) []ProviderResult {
	targets := s.linked(ids)
	return s.fanOut(targets, func(a CalendarAdapter) (string, error) {
		id := ids[a.Provider()]
		return id, a.UpdateEvent(ctx, id, update)
	})
}

// DeleteEvents removes the events listed in ids, keyed by provider name.
func (s *CalendarSet) DeleteEvents(ctx context.Context, ids map[string]string) []ProviderResult {
	targets := s.linked(ids)
	return s.fanOut(targets, func(a CalendarAdapter) (string, error) {
		id := ids[a.Provider()]
		return id, a.DeleteEvent(ctx, id)
	})
}

func (s *CalendarSet) linked(ids map[string]string) []CalendarAdapter {
	if s.Empty() {
		return nil
	}
	var out []CalendarAdapter
	for _, a := range s.adapters {
		if ids[a.Provider()] != "" {
			out = append(out, a)
		}
	}
	return out
}

func (s *CalendarSet) fanOut(adapters []CalendarAdapter, call func(CalendarAdapter) (string, error)) []ProviderResult {
	results := make([]ProviderResult, len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		i, a := i, a
		g.Go(func() (err error) {
			results[i].Provider = a.Provider()
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = fmt.Errorf("%s calendar panicked: %v", a.Provider(), r)
				}
			}()
			results[i].ExternalID, results[i].Err = call(a)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
