package a2a

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealthMap struct {
	values map[string]string
}

func newFakeHealthMap() *fakeHealthMap {
	return &fakeHealthMap{values: make(map[string]string)}
}

func (f *fakeHealthMap) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeHealthMap) Set(ctx context.Context, key, value string) (string, error) {
	f.values[key] = value
	return value, nil
}

func (f *fakeHealthMap) Delete(ctx context.Context, key string) (string, error) {
	v := f.values[key]
	delete(f.values, key)
	return v, nil
}

func TestCollaboratorHealthUnobservedAgentIsHealthy(t *testing.T) {
	h := NewCollaboratorHealth(newFakeHealthMap(), time.Minute)
	assert.True(t, h.IsHealthy("path-computer"))
}

func TestCollaboratorHealthRecordedWithinStalenessIsHealthy(t *testing.T) {
	m := newFakeHealthMap()
	h := NewCollaboratorHealth(m, time.Minute)
	require.NoError(t, h.RecordHealthy(context.Background(), "path-computer"))
	assert.True(t, h.IsHealthy("path-computer"))
}

func TestCollaboratorHealthStaleObservationIsUnhealthy(t *testing.T) {
	m := newFakeHealthMap()
	_, _ = m.Set(context.Background(), "path-computer", time.Now().Add(-time.Hour).UTC().Format(time.RFC3339Nano))
	h := NewCollaboratorHealth(m, time.Minute)
	assert.False(t, h.IsHealthy("path-computer"))
}

func TestCollaboratorHealthForgetClearsObservation(t *testing.T) {
	m := newFakeHealthMap()
	h := NewCollaboratorHealth(m, time.Minute)
	require.NoError(t, h.RecordHealthy(context.Background(), "path-computer"))
	require.NoError(t, h.Forget(context.Background(), "path-computer"))
	_, ok := m.Get("path-computer")
	assert.False(t, ok)
}

func TestNilCollaboratorHealthTreatsEveryAgentAsHealthy(t *testing.T) {
	var h *CollaboratorHealth
	assert.True(t, h.IsHealthy("path-computer"))
	assert.NoError(t, h.RecordHealthy(context.Background(), "path-computer"))
}
