package sde

import (
	"encoding/json"
	"testing"
)

func TestLoadTypes(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "groups",
		`{"_key":18,"name":{"en":"Mineral"},"categoryID":4}`,
	)
	writeJSONL(t, dir, "types",
		`{"_key":34,"name":{"en":"Tritanium"},"published":true,"groupID":18,"volume":0.01}`,
		`{"_key":35,"name":{"en":"Pyerite"},"published":false,"groupID":18}`,
		`{"_key":36,"name":{},"published":true,"groupID":18}`,
	)

	d := newData()
	if err := d.loadTypes(dir); err != nil {
		t.Fatalf("loadTypes: %v", err)
	}

	it, ok := d.Items[34]
	if !ok {
		t.Fatal("missing item 34")
	}
	if it.Name != "Tritanium" || it.GroupID != 18 || it.CategoryID != 4 {
		t.Errorf("item = %+v", it)
	}
	if _, ok := d.Items[35]; ok {
		t.Error("unpublished type should be skipped")
	}
	if _, ok := d.Items[36]; ok {
		t.Error("nameless type should be skipped")
	}
}

func TestReadJSONL_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	called := false
	err := readJSONL(dir, "doesNotExist", func(json.RawMessage) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("readJSONL: %v", err)
	}
	if called {
		t.Error("callback invoked for a missing file")
	}
}

func TestReadJSONL_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "types",
		`{"_key":34}`,
		`not json at all`,
		`{"_key":35}`,
	)

	var keys []int32
	err := readJSONL(dir, "types", func(raw json.RawMessage) error {
		var row struct {
			Key int32 `json:"_key"`
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			return err
		}
		keys = append(keys, row.Key)
		return nil
	})
	if err != nil {
		t.Fatalf("readJSONL: %v", err)
	}
	if len(keys) != 2 || keys[0] != 34 || keys[1] != 35 {
		t.Errorf("keys = %v, want [34 35]", keys)
	}
}
