package cbor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/shroud"
)

type device struct {
	Serial  string                     `codec:"serial"`
	MAC     shroud.Obfuscated[string]  `codec:"mac" obfuscate:"portion(keepAtStart=8)"`
	Owner   shroud.Obfuscated[string]  `codec:"owner"`
	Addrs   shroud.List[string]        `codec:"addrs" obfuscate:"ip"`
	Ports   shroud.Collection[int]     `codec:"ports"`
	Zones   shroud.Set[string]         `codec:"zones" obfuscate:"all"`
	Secrets shroud.Map[string, string] `codec:"secrets" obfuscate:"fixed-value(x)"`
}

func sampleDevice() *device {
	return &device{
		Serial:  "d-1",
		MAC:     shroud.Of("00:1A:2B:3C:4D:5E"),
		Owner:   shroud.Of("Grace"),
		Addrs:   shroud.ListOf([]string{"10.0.0.1"}),
		Ports:   shroud.CollectionOf([]int{22, 443}),
		Zones:   shroud.SetOf([]string{"eu", "eu", "us"}),
		Secrets: shroud.MapOf(map[string]string{"wifi": "hunter2"}),
	}
}

func TestNew(t *testing.T) {
	if New() == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	if ct := New().ContentType(); ct != "application/cbor" {
		t.Errorf("ContentType() = %q, want %q", ct, "application/cbor")
	}
}

func TestRoundTripMasks(t *testing.T) {
	proc, err := shroud.NewProcessor[device](New(), nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	ctx := context.Background()

	data, err := proc.Encode(ctx, sampleDevice())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := proc.Decode(ctx, data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	tests := []struct {
		field    string
		got      string
		expected string
	}{
		{"mac", got.MAC.String(), "00:1A:2B*********"},
		{"owner", got.Owner.String(), "***"},
		{"addrs", got.Addrs.String(), "[10.0.xxx.xxx]"},
		{"ports", got.Ports.String(), "[22 443]"},
		{"zones", got.Zones.String(), "[** **]"},
		{"secrets", got.Secrets.String(), "map[wifi:x]"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.expected)
		}
	}

	if got.Serial != "d-1" || got.Owner.Value() != "Grace" {
		t.Errorf("unmasked values = %q, %q", got.Serial, got.Owner.Value())
	}
	if got.Zones.Len() != 2 {
		t.Errorf("Zones.Len() = %d, want 2", got.Zones.Len())
	}
}

func TestAbsentValues(t *testing.T) {
	proc, _ := shroud.NewProcessor[device](New(), nil)
	ctx := context.Background()

	data, err := proc.Encode(ctx, &device{Serial: "d-2"})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := proc.Decode(ctx, data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if got.MAC.Valid() || got.Addrs.Valid() || got.Secrets.Valid() {
		t.Error("absent values should stay absent")
	}
	if got.Owner.String() != "" {
		t.Errorf("Owner = %q, want empty", got.Owner.String())
	}
}

func TestUnmarshalError(t *testing.T) {
	proc, _ := shroud.NewProcessor[device](New(), nil)

	if _, err := proc.Decode(context.Background(), []byte{0xff, 0x00}); err == nil {
		t.Error("Decode() should fail for malformed input")
	}
}

func TestDecodeErrorNamesSubjectType(t *testing.T) {
	type wrongPorts struct {
		Ports []string `codec:"ports"`
	}
	data, err := New().Marshal(wrongPorts{Ports: []string{"ssh"}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	proc, err := shroud.NewProcessor[device](New(), nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	_, err = proc.Decode(context.Background(), data)
	if err == nil {
		t.Fatal("Decode() should fail for string ports")
	}
	if !errors.Is(err, shroud.ErrUnmarshal) {
		t.Errorf("expected ErrUnmarshal, got %v", err)
	}

	var de *shroud.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *shroud.DecodeError, got %v", err)
	}
	if de.Path != "Ports" || de.Shape != shroud.ShapeCollection || de.Subject != reflect.TypeFor[int]() {
		t.Errorf("DecodeError = %q %s %v, want Ports collection int", de.Path, de.Shape, de.Subject)
	}
}
