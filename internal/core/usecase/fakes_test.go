package usecase

import (
	"context"
	"fmt"
	"listing-organizer/internal/core/domain"
	"sync"
	"time"
)

type fakeAPI struct {
	mu sync.Mutex

	extract      func(url string) (*domain.Property, error)
	upload       func(file domain.UploadFile) ([]domain.Image, error)
	create       func(payload domain.PropertyPayload) (string, error)
	update       func(id string, payload domain.PropertyPayload) error
	fetch        func(id string) (*domain.Property, error)
	fetchBoards  func(filters domain.BoardFilters) ([]domain.RemoteBucket, error)
	assignBoard  func(id string, a domain.BoardAssignment) error
	availability func(id string, available bool) error

	fetchBoardsCalls []domain.BoardFilters
	assignments      []domain.BoardAssignment
	availabilityIDs  []string
	createPayloads   []domain.PropertyPayload
	fetchCalls       int
}

func (f *fakeAPI) ExtractProperty(ctx context.Context, cred domain.Credential, url string) (*domain.Property, error) {
	if f.extract == nil {
		return nil, fmt.Errorf("%w: extract not configured", domain.ErrRemoteCall)
	}
	return f.extract(url)
}

func (f *fakeAPI) UploadImages(ctx context.Context, cred domain.Credential, files []domain.UploadFile) ([]domain.Image, error) {
	return f.upload(files[0])
}

func (f *fakeAPI) CreateProperty(ctx context.Context, cred domain.Credential, payload domain.PropertyPayload) (string, error) {
	f.mu.Lock()
	f.createPayloads = append(f.createPayloads, payload)
	f.mu.Unlock()
	return f.create(payload)
}

func (f *fakeAPI) UpdateProperty(ctx context.Context, cred domain.Credential, id string, payload domain.PropertyPayload) error {
	return f.update(id, payload)
}

func (f *fakeAPI) FetchProperty(ctx context.Context, cred domain.Credential, id string) (*domain.Property, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	return f.fetch(id)
}

func (f *fakeAPI) FetchBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) ([]domain.RemoteBucket, error) {
	f.mu.Lock()
	f.fetchBoardsCalls = append(f.fetchBoardsCalls, filters)
	fn := f.fetchBoards
	f.mu.Unlock()
	return fn(filters)
}

func (f *fakeAPI) UpdatePropertyBoardAssignment(ctx context.Context, cred domain.Credential, id string, a domain.BoardAssignment) error {
	f.mu.Lock()
	f.assignments = append(f.assignments, a)
	fn := f.assignBoard
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id, a)
}

func (f *fakeAPI) UpdatePropertyAvailability(ctx context.Context, cred domain.Credential, id string, available bool) error {
	f.mu.Lock()
	f.availabilityIDs = append(f.availabilityIDs, id)
	fn := f.availability
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id, available)
}

func (f *fakeAPI) boardFetches() []domain.BoardFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.BoardFilters(nil), f.fetchBoardsCalls...)
}

type fakeBoardCache struct {
	mu    sync.Mutex
	items map[string]domain.BoardSet
}

func newFakeBoardCache() *fakeBoardCache {
	return &fakeBoardCache{items: make(map[string]domain.BoardSet)}
}

func (c *fakeBoardCache) Get(ctx context.Context, ownerID string) (*domain.BoardSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.items[ownerID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	clone := set.Clone()
	return &clone, nil
}

func (c *fakeBoardCache) Set(ctx context.Context, ownerID string, boards domain.BoardSet, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[ownerID] = boards.Clone()
	return nil
}

func (c *fakeBoardCache) Invalidate(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, ownerID)
	return nil
}

type fakePropertyCache struct {
	mu    sync.Mutex
	items map[string]domain.Property
}

func newFakePropertyCache() *fakePropertyCache {
	return &fakePropertyCache{items: make(map[string]domain.Property)}
}

func (c *fakePropertyCache) Get(ctx context.Context, ownerID, propertyID string) (*domain.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[ownerID+"/"+propertyID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	clone := p.Clone()
	return &clone, nil
}

func (c *fakePropertyCache) Put(ctx context.Context, ownerID string, property domain.Property) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[ownerID+"/"+property.ID] = property.Clone()
	return nil
}

func (c *fakePropertyCache) Delete(ctx context.Context, ownerID, propertyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, ownerID+"/"+propertyID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.PropertyEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
