package locator

import (
	"context"
	"log"
	"sync"
	"time"

	"geolocale/internal/locale"
	"geolocale/models"
)

// ErrLocationMessage is the user-facing failure text; it intentionally
// carries no technical detail.
const ErrLocationMessage = "location could not be determined"

// PositionTimeout bounds how long a position provider may take.
const PositionTimeout = 10 * time.Second

// Permission mirrors the browser geolocation permission states.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionPrompt      Permission = "prompt"
	PermissionUnsupported Permission = "unsupported"
)

// Position is a latitude/longitude pair from a position provider.
type Position struct {
	Latitude  float64
	Longitude float64
}

// PositionProvider is the platform geolocation capability. Permission must
// never trigger a user prompt; only CurrentPosition may.
type PositionProvider interface {
	Permission() Permission
	CurrentPosition(ctx context.Context) (Position, error)
}

// Resolver reaches the geolocation endpoints. ResolveByIP corresponds to
// the GET operation (the server derives the IP), ResolveByCoordinates to
// the POST operation.
type Resolver interface {
	ResolveByIP(ctx context.Context) (*models.Geolocation, error)
	ResolveByCoordinates(ctx context.Context, latitude, longitude float64) (*models.Geolocation, error)
}

// Store is the durable client-side cache a resolved locale survives
// restarts in.
type Store interface {
	Load(ctx context.Context) (*models.Geolocation, error)
	Save(ctx context.Context, record *models.Geolocation) error
}

// strategy is one way of obtaining a record; strategies run in order until
// one succeeds.
type strategy interface {
	name() string
	tryResolve(ctx context.Context) *models.Geolocation
}

// Locator resolves and remembers the client's locale. It prefers the
// position-provider path for accuracy but degrades to IP-based resolution,
// which needs no user consent.
type Locator struct {
	mu         sync.Mutex
	data       *models.Geolocation
	loading    bool
	lastErr    string
	permission Permission

	store      Store
	strategies []strategy
}

// New builds a locator. A previously persisted record within its TTL
// populates the data immediately, with no network activity. The provider's
// permission is probed without prompting; pass nil when the platform has no
// geolocation capability.
func New(ctx context.Context, provider PositionProvider, resolver Resolver, store Store) *Locator {
	l := &Locator{
		store:      store,
		permission: PermissionUnsupported,
	}

	if provider != nil {
		l.permission = provider.Permission()
		l.strategies = append(l.strategies, &coordinateStrategy{provider: provider, resolver: resolver, locator: l})
	}
	l.strategies = append(l.strategies, &ipStrategy{resolver: resolver})

	if store != nil {
		if cached, err := store.Load(ctx); err == nil && cached != nil {
			l.data = cached
		}
	}

	return l
}

// RequestLocation runs the resolution strategies in order. Calls made while
// a resolution is already in flight return immediately; the in-flight run
// updates the shared state for everyone.
func (l *Locator) RequestLocation(ctx context.Context) {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return
	}
	l.loading = true
	l.lastErr = ""
	l.mu.Unlock()

	var record *models.Geolocation
	for _, s := range l.strategies {
		if record = s.tryResolve(ctx); record != nil {
			break
		}
		log.Printf("locate strategy %s yielded nothing, trying next", s.name())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false

	if record == nil {
		// Keep previously resolved data; a failed retry must not clear it.
		l.lastErr = ErrLocationMessage
		return
	}

	l.data = record
	l.lastErr = ""

	if l.store != nil {
		if err := l.store.Save(ctx, record); err != nil {
			log.Printf("failed to persist resolved locale: %v", err)
		}
	}
}

// Data returns the last resolved record, or nil.
func (l *Locator) Data() *models.Geolocation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data
}

// Loading reports whether a resolution is in flight.
func (l *Locator) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the current user-facing error, or the empty string.
func (l *Locator) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Permission reports the position provider's permission state.
func (l *Locator) Permission() Permission {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.permission
}

// ClearError resets the error state.
func (l *Locator) ClearError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = ""
}

// Locale returns the resolved locale, or the default when nothing has been
// resolved yet.
func (l *Locator) Locale() locale.Locale {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.data == nil {
		return locale.Default
	}
	return l.data.Locale
}

// coordinateStrategy asks the position provider for coordinates and reverse
// geocodes them. Skipped outright when permission is denied, so the user is
// never re-prompted after declining.
type coordinateStrategy struct {
	provider PositionProvider
	resolver Resolver
	locator  *Locator
}

func (s *coordinateStrategy) name() string { return "coordinates" }

func (s *coordinateStrategy) tryResolve(ctx context.Context) *models.Geolocation {
	permission := s.provider.Permission()
	s.locator.setPermission(permission)
	if permission == PermissionDenied || permission == PermissionUnsupported {
		return nil
	}

	posCtx, cancel := context.WithTimeout(ctx, PositionTimeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(posCtx)
	if err != nil {
		log.Printf("position provider failed: %v", err)
		return nil
	}

	record, err := s.resolver.ResolveByCoordinates(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		log.Printf("coordinate resolution failed: %v", err)
		return nil
	}
	return record
}

// ipStrategy is the load-bearing fallback: no consent needed, coarse result.
type ipStrategy struct {
	resolver Resolver
}

func (s *ipStrategy) name() string { return "ip" }

func (s *ipStrategy) tryResolve(ctx context.Context) *models.Geolocation {
	record, err := s.resolver.ResolveByIP(ctx)
	if err != nil {
		log.Printf("IP resolution failed: %v", err)
		return nil
	}
	return record
}

func (l *Locator) setPermission(p Permission) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.permission = p
}
