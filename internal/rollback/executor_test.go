package rollback

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/tripkit/ops-backend/internal/models"
	"go.uber.org/zap"
)

// storeCall records one store invocation for assertions.
type storeCall struct {
	kind     OpKind
	recordID uuid.UUID
	state    models.Snapshot
}

// fakeStore is an in-memory CollectionStore that records every call.
type fakeStore struct {
	calls    []storeCall
	records  map[uuid.UUID]models.Snapshot
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]models.Snapshot)}
}

func (f *fakeStore) InsertRecord(ctx context.Context, data models.Snapshot) (uuid.UUID, error) {
	f.calls = append(f.calls, storeCall{kind: OpInsert, state: data})
	if f.failWith != nil {
		return uuid.Nil, f.failWith
	}
	id := uuid.New()
	f.records[id] = data
	return id, nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, id uuid.UUID, patch models.Snapshot) error {
	f.calls = append(f.calls, storeCall{kind: OpUpdate, recordID: id, state: patch})
	if f.failWith != nil {
		return f.failWith
	}
	f.records[id] = patch
	return nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	f.calls = append(f.calls, storeCall{kind: OpDelete, recordID: id})
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.records, id)
	return nil
}

// fakeMarker is an in-memory consumed-flag store with the same conditional
// semantics as the real log repo.
type fakeMarker struct {
	consumed map[uuid.UUID]bool
	failWith error
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{consumed: make(map[uuid.UUID]bool)}
}

func (f *fakeMarker) MarkConsumed(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	if f.consumed[id] {
		return false, nil
	}
	f.consumed[id] = true
	return true, nil
}

func testExecutor(stores map[string]CollectionStore, marker LogMarker) *Executor {
	return NewExecutor(NewRegistry(stores), marker, zap.NewNop())
}

func captionUpdateEntry(recordID uuid.UUID) models.MutationRecord {
	return models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   recordID,
		Action:     models.ActionUpdate,
		PriorState: models.Snapshot{"text": "old", "hashtags": "#a"},
		PostState:  models.Snapshot{"text": "new", "hashtags": "#b"},
	}
}

func TestRollbackCreateInverse(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionTools: store}, marker)

	recordID := uuid.New()
	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionTools,
		RecordID:   recordID,
		Action:     models.ActionCreate,
		PostState:  models.Snapshot{"name": "maps"},
	}

	if err := exec.Rollback(context.Background(), rec); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if len(store.calls) != 1 {
		t.Fatalf("store received %d calls, want exactly 1", len(store.calls))
	}
	if store.calls[0].kind != OpDelete || store.calls[0].recordID != recordID {
		t.Errorf("store call = %+v, want delete of %v", store.calls[0], recordID)
	}
	if !marker.consumed[rec.ID] {
		t.Error("entry was not marked consumed after successful rollback")
	}
}

func TestRollbackUpdateRoundTrip(t *testing.T) {
	// The end-to-end captions scenario: rolling back an update restores
	// text and hashtags to the prior values and marks the entry consumed.
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	recordID := uuid.New()
	rec := captionUpdateEntry(recordID)

	if err := exec.Rollback(context.Background(), rec); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	restored := store.records[recordID]
	if restored["text"] != "old" || restored["hashtags"] != "#a" {
		t.Errorf("restored record = %v, want text=old hashtags=#a", restored)
	}
	if !marker.consumed[rec.ID] {
		t.Error("entry not marked consumed")
	}
}

func TestRollbackDeleteInverse(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   uuid.New(),
		Action:     models.ActionDelete,
		PriorState: models.Snapshot{"id": "stale", "text": "bring sunscreen", "created_at": "2026-01-01"},
	}

	if err := exec.Rollback(context.Background(), rec); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if len(store.calls) != 1 || store.calls[0].kind != OpInsert {
		t.Fatalf("store calls = %+v, want exactly one insert", store.calls)
	}
	inserted := store.calls[0].state
	if inserted["text"] != "bring sunscreen" {
		t.Errorf("inserted text = %v", inserted["text"])
	}
	if _, ok := inserted["id"]; ok {
		t.Error("insert inverse carried the stale id")
	}
	if _, ok := inserted["created_at"]; ok {
		t.Error("insert inverse carried created_at")
	}
}

func TestRollbackAlreadyConsumed(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := captionUpdateEntry(uuid.New())
	rec.Consumed = true

	err := exec.Rollback(context.Background(), rec)
	if !errors.Is(err, ErrAlreadyConsumed) {
		t.Fatalf("Rollback() error = %v, want ErrAlreadyConsumed", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("store was touched %d times for a consumed entry", len(store.calls))
	}
}

func TestRollbackIdempotency(t *testing.T) {
	// First call applies the inverse once; the second call (with the
	// reloaded, now-consumed entry) fails without touching the store.
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := captionUpdateEntry(uuid.New())

	if err := exec.Rollback(context.Background(), rec); err != nil {
		t.Fatalf("first Rollback() error = %v", err)
	}

	rec.Consumed = true // what a re-read of the entry now reports
	err := exec.Rollback(context.Background(), rec)
	if !errors.Is(err, ErrAlreadyConsumed) {
		t.Fatalf("second Rollback() error = %v, want ErrAlreadyConsumed", err)
	}
	if len(store.calls) != 1 {
		t.Errorf("store touched %d times across two rollback calls, want 1", len(store.calls))
	}
}

func TestRollbackConcurrentConsumption(t *testing.T) {
	// Guard passes on a stale entry but the conditional mark catches the
	// concurrent consumer.
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := captionUpdateEntry(uuid.New())
	marker.consumed[rec.ID] = true // another session already rolled it back

	err := exec.Rollback(context.Background(), rec)
	if !errors.Is(err, ErrAlreadyConsumed) {
		t.Fatalf("Rollback() error = %v, want ErrAlreadyConsumed", err)
	}
}

func TestRollbackMissingPriorStateNeverTouchesStore(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   uuid.New(),
		Action:     models.ActionDelete, // prior state required, absent
	}

	err := exec.Rollback(context.Background(), rec)
	if !errors.Is(err, ErrMissingPriorState) {
		t.Fatalf("Rollback() error = %v, want ErrMissingPriorState", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("store touched %d times despite failed resolution", len(store.calls))
	}
	if marker.consumed[rec.ID] {
		t.Error("entry marked consumed despite failed resolution")
	}
}

func TestRollbackStoreFailureLeavesEntryActive(t *testing.T) {
	store := newFakeStore()
	store.failWith = fmt.Errorf("unique constraint violation")
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := captionUpdateEntry(uuid.New())

	err := exec.Rollback(context.Background(), rec)
	if err == nil {
		t.Fatal("Rollback() should surface the store error")
	}
	if marker.consumed[rec.ID] {
		t.Error("entry marked consumed despite store failure")
	}
}

func TestRollbackBatchPartialFailure(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	recs := make([]models.MutationRecord, 5)
	for i := range recs {
		recs[i] = captionUpdateEntry(uuid.New())
	}
	// entries 2 and 4 (1-based) fail resolution
	recs[1].PriorState = nil
	recs[3].PriorState = nil

	res, err := exec.RollbackBatch(context.Background(), recs)
	if err != nil {
		t.Fatalf("RollbackBatch() error = %v, partial failure must not raise", err)
	}
	if len(res.Succeeded) != 3 {
		t.Errorf("len(Succeeded) = %d, want 3", len(res.Succeeded))
	}
	if len(res.Failed) != 2 {
		t.Errorf("len(Failed) = %d, want 2", len(res.Failed))
	}
	for _, f := range res.Failed {
		if !errors.Is(f.Err, ErrMissingPriorState) {
			t.Errorf("failed entry error = %v, want ErrMissingPriorState", f.Err)
		}
	}
}

func TestRollbackBatchTotalFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = fmt.Errorf("connection refused")
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	recs := make([]models.MutationRecord, 4)
	for i := range recs {
		recs[i] = captionUpdateEntry(uuid.New())
	}

	res, err := exec.RollbackBatch(context.Background(), recs)
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("RollbackBatch() error = %v, want BatchError", err)
	}
	if batchErr.Failed != len(recs) {
		t.Errorf("BatchError.Failed = %d, want %d", batchErr.Failed, len(recs))
	}
	if len(res.Succeeded) != 0 || len(res.Failed) != len(recs) {
		t.Errorf("result = %d succeeded / %d failed, want 0 / %d",
			len(res.Succeeded), len(res.Failed), len(recs))
	}
}

func TestRollbackBatchProcessesInCallerOrder(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	recordID := uuid.New()
	newer := captionUpdateEntry(recordID)
	newer.PriorState = models.Snapshot{"text": "v2", "hashtags": ""}
	older := captionUpdateEntry(recordID)
	older.PriorState = models.Snapshot{"text": "v1", "hashtags": ""}

	// Caller supplies newest-first; the record must end at the oldest
	// prior state.
	res, err := exec.RollbackBatch(context.Background(), []models.MutationRecord{newer, older})
	if err != nil {
		t.Fatalf("RollbackBatch() error = %v", err)
	}
	if len(res.Succeeded) != 2 {
		t.Fatalf("len(Succeeded) = %d, want 2", len(res.Succeeded))
	}
	if got := store.records[recordID]["text"]; got != "v1" {
		t.Errorf("final restored text = %v, want v1 (caller order violated)", got)
	}
}

func TestRollbackBatchCancellation(t *testing.T) {
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs := []models.MutationRecord{captionUpdateEntry(uuid.New()), captionUpdateEntry(uuid.New())}
	res, err := exec.RollbackBatch(ctx, recs)

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("RollbackBatch() error = %v, want BatchError (everything failed)", err)
	}
	if len(res.Failed) != 2 {
		t.Errorf("len(Failed) = %d, want 2", len(res.Failed))
	}
	for _, f := range res.Failed {
		if !errors.Is(f.Err, context.Canceled) {
			t.Errorf("failed entry error = %v, want context.Canceled", f.Err)
		}
	}
	if len(store.calls) != 0 {
		t.Errorf("store touched %d times after cancellation", len(store.calls))
	}
}

func TestRollbackBatchDuplicateEntry(t *testing.T) {
	// The same entry id twice in one batch must mutate the store exactly
	// once. For a delete inverse a second apply would insert the restored
	// record twice.
	store := newFakeStore()
	marker := newFakeMarker()
	exec := testExecutor(map[string]CollectionStore{models.CollectionCaptions: store}, marker)

	rec := models.MutationRecord{
		ID:         uuid.New(),
		Collection: models.CollectionCaptions,
		RecordID:   uuid.New(),
		Action:     models.ActionDelete,
		PriorState: models.Snapshot{"text": "bring sunscreen"},
	}

	res, err := exec.RollbackBatch(context.Background(), []models.MutationRecord{rec, rec})
	if err != nil {
		t.Fatalf("RollbackBatch() error = %v", err)
	}
	if len(res.Succeeded) != 1 {
		t.Errorf("len(Succeeded) = %d, want 1", len(res.Succeeded))
	}
	if len(res.Failed) != 1 {
		t.Fatalf("len(Failed) = %d, want 1", len(res.Failed))
	}
	if !errors.Is(res.Failed[0].Err, ErrAlreadyConsumed) {
		t.Errorf("duplicate copy error = %v, want ErrAlreadyConsumed", res.Failed[0].Err)
	}
	if len(store.calls) != 1 {
		t.Errorf("store touched %d times for a duplicated entry, want 1", len(store.calls))
	}
	if len(store.records) != 1 {
		t.Errorf("store holds %d records after duplicate rollback, want 1", len(store.records))
	}
}

func TestRollbackBatchEmpty(t *testing.T) {
	exec := testExecutor(map[string]CollectionStore{}, newFakeMarker())

	res, err := exec.RollbackBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("RollbackBatch(nil) error = %v", err)
	}
	if len(res.Succeeded) != 0 || len(res.Failed) != 0 {
		t.Errorf("empty batch produced %+v", res)
	}
}
