package factory

import "testing"

type sample struct{ Stops int }

type sampleConf struct {
	Stops int `json:"stops"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Stops: c.Stops}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"stops": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Stops != 3 {
		t.Fatalf("expected 3 got %d", inst.Stops)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewRegistry[*sample]()
	if _, err := reg.Create(ModuleConfig{Type: "missing"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry[*sample]()
	f := func(map[string]any) (*sample, error) { return &sample{}, nil }
	if err := reg.Register("s", f); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("s", f); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
}
