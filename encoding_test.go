package shroud

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ugorji/go/codec"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

type hookRecord struct {
	Secret Obfuscated[string]  `json:"secret" yaml:"secret" msgpack:"secret" bson:"secret"`
	Codes  List[int]           `json:"codes" yaml:"codes" msgpack:"codes" bson:"codes"`
	Tags   Set[string]         `json:"tags" yaml:"tags" msgpack:"tags" bson:"tags"`
	Bag    Collection[string]  `json:"bag" yaml:"bag" msgpack:"bag" bson:"bag"`
	Limits Map[string, int]    `json:"limits" yaml:"limits" msgpack:"limits" bson:"limits"`
	Maybe  Obfuscated[float64] `json:"maybe" yaml:"maybe" msgpack:"maybe" bson:"maybe"`
}

func fullRecord() hookRecord {
	return hookRecord{
		Secret: Obfuscate(All(), "s3cret", Natural()),
		Codes:  ListOf([]int{1, 2}),
		Tags:   SetOf([]string{"a", "b"}),
		Bag:    CollectionOf([]string{}),
		Limits: MapOf(map[string]int{"daily": 5}),
	}
}

func checkRecord(t *testing.T, got hookRecord) {
	t.Helper()
	if got.Secret.Value() != "s3cret" {
		t.Errorf("Secret = %q, want the unmasked value", got.Secret.Value())
	}
	if got.Secret.String() != "s3cret" {
		t.Errorf("decoded Secret should carry no masking, got %q", got.Secret.String())
	}
	if got.Codes.String() != "[1 2]" {
		t.Errorf("Codes = %q", got.Codes.String())
	}
	if !got.Tags.Contains("a") || got.Tags.Len() != 2 {
		t.Errorf("Tags = %v", got.Tags.Values())
	}
	if !got.Bag.Valid() || got.Bag.Len() != 0 {
		t.Errorf("Bag should be present and empty, got %q", got.Bag.String())
	}
	if v, ok := got.Limits.Get("daily"); !ok || v != 5 {
		t.Errorf("Limits = %v", got.Limits.Values())
	}
	if got.Maybe.Valid() {
		t.Error("Maybe should be absent")
	}
}

func TestJSONHooks(t *testing.T) {
	data, err := json.Marshal(fullRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), `"secret":"s3cret"`) || !strings.Contains(string(data), `"maybe":null`) {
		t.Errorf("Marshal() = %s", data)
	}

	var got hookRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	checkRecord(t, got)
}

func TestJSONHooks_Null(t *testing.T) {
	got := hookRecord{Secret: Of("old"), Codes: ListOf([]int{1})}
	if err := json.Unmarshal([]byte(`{"secret":null,"codes":null}`), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Secret.Valid() || got.Codes.Valid() {
		t.Error("null should decode as absent")
	}
}

func TestJSONHooks_SubjectTypeError(t *testing.T) {
	var got hookRecord
	err := json.Unmarshal([]byte(`{"codes":["x"]}`), &got)
	if err == nil {
		t.Fatal("Unmarshal() should fail")
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("error should be *json.UnmarshalTypeError, got %T", err)
	}
	if typeErr.Type.String() != "int" {
		t.Errorf("Type = %v, want int", typeErr.Type)
	}
	if strings.Contains(err.Error(), "List") {
		t.Errorf("error should not name the wrapper: %v", err)
	}
}

func TestYAMLHooks(t *testing.T) {
	data, err := yaml.Marshal(fullRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), "secret: s3cret") {
		t.Errorf("Marshal() = %s", data)
	}

	var got hookRecord
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	checkRecord(t, got)
}

func TestYAMLHooks_SubjectTypeError(t *testing.T) {
	var got hookRecord
	err := yaml.Unmarshal([]byte("limits:\n  daily: lots\n"), &got)
	if err == nil {
		t.Fatal("Unmarshal() should fail")
	}
	if !strings.Contains(err.Error(), "into int") {
		t.Errorf("error should name the subject type: %v", err)
	}
}

func TestMsgpackHooks(t *testing.T) {
	data, err := msgpack.Marshal(fullRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got hookRecord
	if err := msgpack.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	checkRecord(t, got)
}

func TestBSONHooks(t *testing.T) {
	data, err := bson.Marshal(fullRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got hookRecord
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	checkRecord(t, got)
}

func TestCBORHooks(t *testing.T) {
	h := &codec.CborHandle{}

	rec := fullRecord()
	var data []byte
	if err := codec.NewEncoderBytes(&data, h).Encode(&rec); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var got hookRecord
	if err := codec.NewDecoderBytes(data, h).Decode(&got); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	checkRecord(t, got)
}

func TestXMLHooks(t *testing.T) {
	data, err := xml.Marshal(fullRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for _, want := range []string{
		"<Secret>s3cret</Secret>",
		"<Codes><item>1</item><item>2</item></Codes>",
		"<Limits><entry><key>daily</key><value>5</value></entry></Limits>",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %s, want it to contain %s", data, want)
		}
	}
	if strings.Contains(string(data), "<Maybe>") {
		t.Errorf("absent value should write no element: %s", data)
	}

	var got hookRecord
	if err := xml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	checkRecord(t, got)
}

func TestXMLHooks_SubjectTypeError(t *testing.T) {
	var got hookRecord
	err := xml.Unmarshal([]byte("<hookRecord><Codes><item>x</item></Codes></hookRecord>"), &got)
	if err == nil {
		t.Fatal("Unmarshal() should fail")
	}

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error should be *DecodeError, got %T", err)
	}
	if de.Shape != ShapeList || de.Subject != reflect.TypeFor[int]() {
		t.Errorf("DecodeError shape, subject = %v, %v, want list, int", de.Shape, de.Subject)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("error should wrap *strconv.NumError, got %v", err)
	}
	if strings.Contains(err.Error(), "List") {
		t.Errorf("error should not name the wrapper: %v", err)
	}
}
