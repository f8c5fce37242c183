package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestActionValid(t *testing.T) {
	tests := []struct {
		action   Action
		expected bool
	}{
		{ActionCreate, true},
		{ActionUpdate, true},
		{ActionDelete, true},
		{Action("insert"), false},
		{Action("CREATE"), false},
		{Action(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := tt.action.Valid(); got != tt.expected {
				t.Errorf("Action(%q).Valid() = %v, want %v", tt.action, got, tt.expected)
			}
		})
	}
}

func TestMutationRecordValidate(t *testing.T) {
	prior := Snapshot{"title": "old"}
	post := Snapshot{"title": "new"}

	tests := []struct {
		name    string
		action  Action
		prior   Snapshot
		post    Snapshot
		wantErr bool
	}{
		{"create with post only", ActionCreate, nil, post, false},
		{"create with prior", ActionCreate, prior, post, true},
		{"create without post", ActionCreate, nil, nil, true},
		{"update with both", ActionUpdate, prior, post, false},
		{"update without prior", ActionUpdate, nil, post, true},
		{"update without post", ActionUpdate, prior, nil, true},
		{"delete with prior only", ActionDelete, prior, nil, false},
		{"delete without prior", ActionDelete, nil, nil, true},
		{"delete with post", ActionDelete, prior, post, true},
		{"unknown action", Action("upsert"), prior, post, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := MutationRecord{
				ID:         uuid.New(),
				Collection: CollectionCaptions,
				RecordID:   uuid.New(),
				Action:     tt.action,
				PriorState: tt.prior,
				PostState:  tt.post,
			}
			err := rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSnapshotClone(t *testing.T) {
	orig := Snapshot{"title": "x", "destination": nil}
	clone := orig.Clone()

	clone["title"] = "y"
	delete(clone, "destination")

	if orig["title"] != "x" {
		t.Errorf("mutating clone changed original title to %v", orig["title"])
	}
	if _, ok := orig["destination"]; !ok {
		t.Error("deleting from clone removed key from original")
	}

	if Snapshot(nil).Clone() != nil {
		t.Error("cloning nil snapshot should stay nil")
	}
}

func TestContentSnapshotsIncludeEmptyFields(t *testing.T) {
	// A snapshot must carry absent values explicitly so a restore writes
	// them back as absent.
	item := &ContentItem{ID: uuid.New(), Title: "t"}
	snap := item.Snapshot()

	for _, key := range []string{"title", "body_html", "excerpt", "destination", "season", "status", "id", "created_at"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("content item snapshot missing key %q", key)
		}
	}

	caption := &Caption{ID: uuid.New(), Text: "hello"}
	for _, key := range []string{"content_item_id", "text", "hashtags", "platform"} {
		if _, ok := caption.Snapshot()[key]; !ok {
			t.Errorf("caption snapshot missing key %q", key)
		}
	}

	tool := &Tool{ID: uuid.New(), Name: "maps"}
	for _, key := range []string{"name", "url", "description", "category"} {
		if _, ok := tool.Snapshot()[key]; !ok {
			t.Errorf("tool snapshot missing key %q", key)
		}
	}
}
